// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"contactgate/internal/core/version"
	"contactgate/internal/modkit/httpkit"
	ptime "contactgate/internal/platform/time"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Backend names the store behind a Pinger
type Backend interface {
	Backend() string
}

// Fallback is satisfied by stores standing in for an unreachable backend
type Fallback interface {
	Fallback() error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Clock       ptime.Clock

	// RateStore is pinged by the readiness probe; nil reports skipped
	RateStore any
	// Channel is the configured delivery channel name
	Channel string
	// Configured is false while the contact endpoint lacks required settings
	Configured bool
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	d.Clock = ptime.OrSystem(d.Clock)
	h := &handlers{deps: d}

	httpkit.GetCall(r, "/health", h.health)
	httpkit.GetCall(r, "/ready", h.ready)
	httpkit.GetCall(r, "/version", h.version)
	httpkit.GetCall(r, "/service", h.service)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok degraded fail skipped unknown
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

func (h *handlers) now() string { return h.deps.Clock.Now().UTC().Format(time.RFC3339) }

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now(),
	}, nil
}

// ready pings the rate store and reports the delivery setup; it never calls
// the delivery channel itself
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	store := ReadyCheck{Name: "rate_store", Status: "skipped"}
	if c := h.deps.RateStore; c != nil {
		if b, ok := c.(Backend); ok {
			store.Detail = b.Backend()
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				store.Status, store.Error = "fail", err.Error()
			} else {
				store.Status = "ok"
			}
			if f, ok := c.(Fallback); ok && store.Status == "ok" {
				if err := f.Fallback(); err != nil {
					store.Status, store.Error = "degraded", "fallback: "+err.Error()
				}
			}
		} else {
			store.Status = "unknown"
		}
	}

	channel := ReadyCheck{Name: "delivery", Status: "ok", Detail: h.deps.Channel}
	if !h.deps.Configured {
		channel.Status, channel.Error = "fail", "contact endpoint is missing configuration"
	}

	overall := "ok"
	switch {
	case store.Status == "fail" || channel.Status == "fail":
		overall = "fail"
	case store.Status != "ok":
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{store, channel},
		Now:    h.now(),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.deps.Clock.Now().Sub(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}
