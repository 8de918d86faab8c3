// Package httpkit is what modules import for handlers and routing, so they
// never reach into internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "contactgate/internal/platform/net/http"
)

type (
	// Envelope is the reply body every endpoint answers with
	Envelope = phttp.Envelope

	// Response is a return-style handler result
	Response = phttp.Response

	// Router is the platform router seam
	Router = phttp.Router
)

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and failure envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response-returning function to net/http
func Handle(fn func(*http.Request) Response) phttp.Handler { return phttp.Handle(fn) }

// Call adapts a data-returning function; a returned Response is written as is
func Call(fn func(*http.Request) (any, error)) phttp.Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}
