// Package modkit assembles route modules: a module is built from options into
// a Built value, and Built.Mount attaches it to a router
package modkit

import (
	"net/http"

	"contactgate/internal/modkit/httpkit"
	"contactgate/internal/modkit/module"
	phttp "contactgate/internal/platform/net/http"
)

// Module aliases module.Module so ports packages can depend on the small sibling
type Module = module.Module

// Option configures Build
type Option func(*Built)

// WithName names the module in logs
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts the module under prefix; empty means in place
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts sets what the module exposes to its neighbours (see module.PortsOf)
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// WithRegister sets the function that attaches endpoints
func WithRegister(fn func(phttp.Router)) Option { return func(b *Built) { b.Register = fn } }

// Built is the resolved module configuration
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

// Build applies opts; the middleware slice never aliases a caller's
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}

// Mount attaches the module: its middleware wraps only its own routes
func (b Built) Mount(r httpkit.Router) {
	mount := func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		b.Register(sub)
	}
	if b.Prefix == "" || b.Prefix == "/" {
		r.Group(mount)
		return
	}
	r.Route(b.Prefix, mount)
}
