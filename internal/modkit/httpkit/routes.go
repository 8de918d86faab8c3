package httpkit

import "net/http"

// GetCall mounts a body-less JSON endpoint under GET
func GetCall(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, Call(fn))
}

// MountUnder mounts a subrouter at prefix behind its own middleware
// (/metrics and the versioned ops API each get their own stack)
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPIV1 mounts the ops API under /api/v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/v1", mw, mount)
}
