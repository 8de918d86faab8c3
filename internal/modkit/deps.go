// Package modkit provides module wiring and core deps
package modkit

import (
	"contactgate/internal/platform/config"
	"contactgate/internal/platform/logger"
	ptime "contactgate/internal/platform/time"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf

	// Metrics is where modules register collectors; nil disables metrics
	Metrics prometheus.Registerer

	// Clock drives windows and TTLs; nil means the wall clock
	Clock ptime.Clock
}

// Logger returns Log or a component logger named after the module
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		l := d.Log.With().Str("component", component).Logger()
		return &l
	}
	return logger.Named(component)
}

// Now returns the configured clock, falling back to the system clock
func (d Deps) Now() ptime.Clock { return ptime.OrSystem(d.Clock) }
