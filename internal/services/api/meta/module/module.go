// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"contactgate/internal/core/version"
	modkit "contactgate/internal/modkit"
	"contactgate/internal/modkit/httpkit"
	str "contactgate/internal/platform/strings"

	contactmod "contactgate/internal/services/contact/module"

	metahttp "contactgate/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
}

// New constructs a meta module. contact carries the readiness view of the
// contact module; its zero value reports the endpoint as unconfigured.
func New(deps modkit.Deps, contact contactmod.Ports, opts ...modkit.Option) modkit.Module {
	clock := deps.Now()
	startedAt := clock.Now()

	var store any
	if contact.Store != nil {
		store = contact.Store
	}

	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithRegister(func(r httpkit.Router) {
			metahttp.Register(r, metahttp.Deps{
				ServiceName: version.Service,
				StartedAt:   startedAt,
				Clock:       clock,
				RateStore:   store,
				Channel:     contact.Channel,
				Configured:  contact.Configured,
			})
		}),
	}, opts...)...)

	return &Module{built: b}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix reports the mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
