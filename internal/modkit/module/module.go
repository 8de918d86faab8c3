// Package module holds the contract api.Mount relies on; it sits apart from
// modkit so a ports package can name it without importing the builder
package module

import phttp "contactgate/internal/platform/net/http"

// Module is implemented by the contact and meta modules
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)

	// Ports returns the typed port struct; read it with PortsOf
	Ports() any
}
