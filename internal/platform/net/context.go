// Package net provides utilities for working with request contexts
package net

import (
	"context"
	"fmt"
	stdnet "net"
	"net/netip"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyClientIP ctxKey = "client_ip"

// WithRequest annotates context with the request id and resolved client address
func WithRequest(ctx context.Context, reqID, clientIP string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if clientIP != "" {
		ctx = context.WithValue(ctx, keyClientIP, clientIP)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// ClientIP returns the client address stored on the context if present
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(keyClientIP).(string); ok {
		return v
	}
	return ""
}

// ClientIPPolicy says which forwarded header, if any, names the caller.
// The zero value trusts nothing but the socket peer.
type ClientIPPolicy struct {
	// Header is set by the proxy in front, e.g. CF-Connecting-IP or X-Forwarded-For
	Header string
	// Trusted limits which peers may set Header; empty trusts every peer
	Trusted []netip.Prefix
}

// ParseTrusted parses proxy addresses or CIDR ranges
func ParseTrusted(items []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if !strings.Contains(it, "/") {
			addr, err := netip.ParseAddr(it)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", it, err)
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		pfx, err := netip.ParsePrefix(it)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", it, err)
		}
		out = append(out, pfx.Masked())
	}
	return out, nil
}

// Resolve returns the caller address under the policy. A forwarded value is
// used only when Header is set and the peer is trusted; X-Forwarded-For
// yields its last hop, the one the trusted proxy appended.
func (p ClientIPPolicy) Resolve(r *http.Request) string {
	peer := ClientAddress(r)
	if p.Header == "" || !p.trusts(peer) {
		return peer
	}
	v := r.Header.Values(p.Header)
	if len(v) == 0 {
		return peer
	}
	hops := strings.Split(v[len(v)-1], ",")
	if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
		return ip
	}
	return peer
}

func (p ClientIPPolicy) trusts(peer string) bool {
	if len(p.Trusted) == 0 {
		return true
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, pfx := range p.Trusted {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientAddress returns the socket peer host, or "unknown" when the request
// carries none so every caller still maps to one rate-limit key.
func ClientAddress(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := stdnet.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
