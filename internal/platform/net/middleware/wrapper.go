// Package middleware provides thin adapters over chi middleware without leaking chi types
package middleware

import (
	"net/http"
	"time"

	"contactgate/internal/platform/logger"
	pnet "contactgate/internal/platform/net"
	pstrings "contactgate/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache sets headers to disable client and proxy caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Heartbeat replies with 200 OK to GET path, useful for LB health checks
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// ClientContext resolves the caller address once under policy and stores it,
// together with the request id, where pnet and logger.C can find it. Mount after RequestID.
func ClientContext(policy pnet.ClientIPPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())
			ip := policy.Resolve(r)
			ctx := pnet.WithRequest(r.Context(), reqID, ip)
			ctx = logger.WithRequest(ctx, reqID, ip)
			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors with read-only defaults; used on the ops routes
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(
			o.AllowedHeaders,
			[]string{
				"Accept",
				"Content-Type",
				"X-Request-ID",
			},
		),
		ExposedHeaders:   o.ExposedHeaders,
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

// Defaults is the chain every route gets: ids, client address, panic guard, deadline
func Defaults(timeout time.Duration, policy pnet.ClientIPPolicy) []func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		RequestID(),
		ClientContext(policy),
		RecoverJSON,
		Timeout(timeout),
	}
}
