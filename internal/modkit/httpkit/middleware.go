package httpkit

import (
	"net/http"
	"time"

	pnet "contactgate/internal/platform/net"
	"contactgate/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// Timeout bounds each request; 0 uses the middleware default
	Timeout time.Duration
	// Slow marks requests at or above this duration as warnings in the access log
	Slow time.Duration
	// QuietPaths are left out of the access log (health checks)
	QuietPaths []string
	// ClientIP picks the caller address for logs and request context
	ClientIP pnet.ClientIPPolicy
}

// CommonStack returns the baseline middleware every mounted module sits behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	mw := middleware.Defaults(o.Timeout, o.ClientIP)
	return append(mw,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.Slow, Skip: o.QuietPaths}),
		middleware.NoCache(),
	)
}
