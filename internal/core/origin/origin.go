// Package origin decides which browser origins may read contact responses and
// derives the CORS headers for every reply, including errors and preflights
package origin

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Header values the contact route advertises
const (
	AllowMethods  = "POST, OPTIONS"
	AllowHeaders  = "Content-Type"
	ExposeHeaders = "Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, X-Request-ID"
	MaxAge        = 86400

	nullOrigin = "null"
)

// Gate is an ordered allowlist of exact origins and wildcard rules
type Gate struct {
	exact    map[string]struct{}
	patterns []*regexp.Regexp
	fallback string
}

// New builds a Gate. Entries containing "*" are pattern rules where each "*"
// stands for exactly one DNS label, e.g. "https://*.preview.example.dev".
// fallback is echoed for disallowed origins; when empty the first exact entry is used.
func New(allowed []string, fallback string) *Gate {
	g := &Gate{exact: make(map[string]struct{}, len(allowed))}
	firstExact := ""
	for _, raw := range allowed {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "*") {
			if re := compilePattern(raw); re != nil {
				g.patterns = append(g.patterns, re)
			}
			continue
		}
		key, ok := canonical(raw)
		if !ok {
			continue
		}
		g.exact[key] = struct{}{}
		if firstExact == "" {
			firstExact = key
		}
	}

	switch {
	case strings.TrimSpace(fallback) != "":
		if key, ok := canonical(fallback); ok {
			g.fallback = key
		} else {
			g.fallback = strings.TrimSpace(fallback)
		}
	case firstExact != "":
		g.fallback = firstExact
	default:
		g.fallback = nullOrigin
	}
	return g
}

// IsAllowed reports whether origin is on the list; a missing origin never is
func (g *Gate) IsAllowed(origin string) bool {
	key, ok := canonical(origin)
	if !ok {
		return false
	}
	if _, hit := g.exact[key]; hit {
		return true
	}
	for _, re := range g.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Resolve returns the value for Access-Control-Allow-Origin
func (g *Gate) Resolve(origin string) string {
	if g.IsAllowed(origin) {
		return strings.TrimRight(strings.TrimSpace(origin), "/")
	}
	return g.fallback
}

// Fallback is the origin echoed for requests that are not allowed
func (g *Gate) Fallback() string { return g.fallback }

// Apply writes the CORS headers for a request carrying origin
func (g *Gate) Apply(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", g.Resolve(origin))
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Expose-Headers", ExposeHeaders)
	h.Set("Access-Control-Max-Age", strconv.Itoa(MaxAge))
	addVary(h, "Origin")
}

// Headers returns a fresh header map for origin
func (g *Gate) Headers(origin string) http.Header {
	h := http.Header{}
	g.Apply(h, origin)
	return h
}

func addVary(h http.Header, v string) {
	for _, cur := range h.Values("Vary") {
		for _, part := range strings.Split(cur, ",") {
			if strings.EqualFold(strings.TrimSpace(part), v) {
				return
			}
		}
	}
	h.Add("Vary", v)
}

// canonical lower-cases scheme and host and drops any path; it rejects
// anything that is not an absolute http(s) origin
func canonical(origin string) (string, bool) {
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == nullOrigin {
		return "", false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || u.User != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}

const labelRE = `[a-z0-9](?:[a-z0-9-]*[a-z0-9])?`

func compilePattern(pattern string) *regexp.Regexp {
	pattern = strings.ToLower(strings.TrimRight(strings.TrimSpace(pattern), "/"))
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, labelRE) + "$")
	if err != nil {
		return nil
	}
	return re
}
