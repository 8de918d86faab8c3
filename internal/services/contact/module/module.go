// Package module wires the contact endpoint into the API using modkit
package module

import (
	"contactgate/internal/adapters/delivery"
	"contactgate/internal/adapters/ratestore"
	"contactgate/internal/adapters/siteverify"
	"contactgate/internal/core/origin"
	"contactgate/internal/core/ratelimit"
	"contactgate/internal/core/refid"
	"contactgate/internal/core/render"
	"contactgate/internal/modkit"
	"contactgate/internal/modkit/httpkit"
	"contactgate/internal/services/contact/domain"
	contacthttp "contactgate/internal/services/contact/http"
	"contactgate/internal/services/contact/service"
)

// Module implements the contact module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs the contact module. A nil store means the in-process map.
// Missing settings do not fail construction; the endpoint answers 500 until they are set.
func New(deps modkit.Deps, o Options, store RateStore, opts ...modkit.Option) modkit.Module {
	log := deps.Logger("contact")
	clock := deps.Now()

	if store == nil {
		store = ratestore.NewMemory(ratestore.MemoryOptions{Clock: clock, SweepAbove: o.RateSweepAbove})
	}
	missing := o.missing()
	clientIP, err := o.ClientIPPolicy()
	if err != nil {
		log.Error().Err(err).Msg("trusted proxies")
	}

	renderer, err := render.New(render.Style(o.TemplateStyle), o.SubjectPrefix)
	if err != nil {
		log.Error().Err(err).Msg("template style")
		renderer, _ = render.New(render.StyleCard, o.SubjectPrefix)
	}

	dc := o.Delivery
	if dc.HTTPClient == nil {
		dc.HTTPClient = o.HTTPClient
	}
	var channel domain.Channel = unconfigured{}
	if ch, err := delivery.New(dc); err != nil {
		log.Error().Err(err).Str("channel", dc.Kind).Msg("delivery channel")
	} else {
		channel = ch
	}

	if len(missing) > 0 {
		log.Error().Strs("missing", missing).Msg("contact endpoint is not configured; submissions will be refused")
	}

	svc := service.New(service.Deps{
		Limiter: ratelimit.New(store,
			ratelimit.WithPolicy(ratelimit.Policy{Limit: o.RateLimit, Window: o.RateWindow}),
			ratelimit.WithClock(clock),
		),
		Verifier: verifierPort{v: siteverify.New(siteverify.Options{
			URL:        o.VerifyURL,
			Secret:     o.TurnstileSecret,
			Timeout:    o.VerifyTimeout,
			MinScore:   o.VerifyMinScore,
			HTTPClient: o.HTTPClient,
		})},
		Issuer:   refid.New(o.ReferencePrefix, clock),
		Renderer: renderer,
		Channel:  channel,
		Clock:    clock,
		Metrics:  deps.Metrics,
	}, service.Config{
		DeliveryTimeout: o.DeliveryTimeout,
		Missing:         missing,
	})

	gate := origin.New(o.AllowedOrigins, o.DefaultOrigin)
	log.Info().
		Str("channel", channel.Name()).
		Str("rate_store", store.Backend()).
		Str("fallback_origin", gate.Fallback()).
		Msg("contact endpoint ready")

	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("contact"),
		modkit.WithPorts(Ports{
			Submitter:  svc,
			Store:      store,
			Channel:    channel.Name(),
			Configured: len(missing) == 0,
		}),
		modkit.WithRegister(func(r httpkit.Router) {
			contacthttp.Register(r, contacthttp.Deps{Path: o.Path, Svc: svc, Gate: gate, ClientIP: clientIP})
		}),
	}, opts...)...)

	return &Module{deps: deps, built: b}
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.built.Ports }
