// Package service orchestrates one contact submission: admission, human
// verification, reference id, rendering, and delivery
package service

import (
	"context"
	"time"

	"contactgate/internal/core/contact"
	"contactgate/internal/core/render"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"
	ptime "contactgate/internal/platform/time"
	"contactgate/internal/services/contact/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultDeliveryTimeout = 15 * time.Second

// Config holds the service knobs
type Config struct {
	// DeliveryTimeout bounds one Send; 0 means 15s
	DeliveryTimeout time.Duration

	// Missing lists required settings that are not set, by env key
	Missing []string
}

// Deps are the collaborators the service drives
type Deps struct {
	Limiter  domain.Limiter
	Verifier domain.Verifier
	Issuer   domain.Issuer
	Renderer domain.Renderer
	Channel  domain.Channel

	Clock   ptime.Clock
	Metrics prometheus.Registerer
}

// Service implements domain.Submitter
type Service struct {
	d   Deps
	cfg Config
	m   *metrics
}

var _ domain.Submitter = (*Service)(nil)

// New wires a Service
func New(d Deps, cfg Config) *Service {
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	d.Clock = ptime.OrSystem(d.Clock)
	return &Service{d: d, cfg: cfg, m: newMetrics(d.Metrics)}
}

// Misconfigured implements domain.Submitter
func (s *Service) Misconfigured(ctx context.Context) error {
	if len(s.cfg.Missing) == 0 {
		return nil
	}
	logger.C(ctx).Error().Strs("missing", s.cfg.Missing).Msg("contact endpoint is not configured")
	return perr.New(perr.ErrorCodeMisconfigured, domain.MsgMisconfig)
}

// Admit implements domain.Submitter. A failing store lets the request through.
func (s *Service) Admit(ctx context.Context, addr string) domain.Admission {
	d, err := s.d.Limiter.Check(ctx, addr)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("rate limit store failed; allowing request")
	}
	return d
}

// Reject implements domain.Submitter
func (s *Service) Reject(o domain.Outcome) { s.m.count(o) }

// Submit implements domain.Submitter
func (s *Service) Submit(ctx context.Context, req domain.Request) (domain.Receipt, error) {
	rec, err := s.submit(ctx, req)
	s.m.count(domain.OutcomeOf(err))
	return rec, err
}

func (s *Service) submit(ctx context.Context, req domain.Request) (domain.Receipt, error) {
	if err := s.Misconfigured(ctx); err != nil {
		return domain.Receipt{}, err
	}
	log := logger.C(ctx)

	if err := s.d.Verifier.Verify(ctx, req.Payload.Token, req.ClientIP); err != nil {
		log.Info().Str("code", perr.CodeOf(err).String()).Object("payload", req.Payload).Msg("verification rejected")
		return domain.Receipt{}, err
	}

	ref, err := s.d.Issuer.Issue()
	if err != nil {
		log.Error().Err(err).Msg("reference id")
		return domain.Receipt{}, perr.Wrap(err, perr.ErrorCodeDelivery, domain.MsgDelivery)
	}

	sub := contact.Submission{
		Payload:     req.Payload.WithoutToken(),
		ReferenceID: ref,
		ClientIP:    req.ClientIP,
		Origin:      req.Origin,
		UserAgent:   req.UserAgent,
		ReceivedAt:  s.d.Clock.Now(),
	}
	msg, err := s.d.Renderer.Render(sub)
	if err != nil {
		log.Error().Err(err).Str("reference_id", ref).Msg("render failed")
		return domain.Receipt{}, perr.Wrap(err, perr.ErrorCodeDelivery, domain.MsgDelivery)
	}

	if err := s.deliver(ctx, msg); err != nil {
		log.Error().Err(err).
			Str("channel", s.d.Channel.Name()).
			Str("reference_id", ref).
			Object("payload", sub.Payload).
			Msg("delivery failed")
		return domain.Receipt{}, err
	}

	log.Info().
		Str("channel", s.d.Channel.Name()).
		Str("reference_id", ref).
		Object("payload", sub.Payload).
		Msg("contact delivered")
	return domain.Receipt{ReferenceID: ref, Message: domain.MsgSent}, nil
}

// deliver sends within the delivery timeout; one attempt, no fallback channel
func (s *Service) deliver(ctx context.Context, msg render.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	defer cancel()

	start := time.Now()
	err := s.d.Channel.Send(ctx, msg)
	s.m.delivery.WithLabelValues(s.d.Channel.Name()).Observe(time.Since(start).Seconds())

	if err != nil && !perr.IsCode(err, perr.ErrorCodeDelivery) {
		return perr.Wrap(err, perr.ErrorCodeDelivery, domain.MsgDelivery)
	}
	return err
}
