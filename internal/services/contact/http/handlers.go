// Package http exposes the contact endpoint. Every answer, errors and
// preflights included, carries the origin gate's CORS headers.
package http

import (
	"net/http"
	"strconv"

	"contactgate/internal/core/contact"
	"contactgate/internal/core/origin"
	"contactgate/internal/modkit/httpkit"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"
	pnet "contactgate/internal/platform/net"
	"contactgate/internal/platform/net/http/bind"
	"contactgate/internal/services/contact/domain"
)

// DefaultPath is where the endpoint mounts when Deps.Path is empty
const DefaultPath = "/contact"

// Deps are the handler dependencies
type Deps struct {
	Path    string
	Svc     domain.Submitter
	Gate    *origin.Gate
	MaxBody int64
	// ClientIP keys the rate limit; the zero policy uses the socket peer
	ClientIP pnet.ClientIPPolicy
}

type handlers struct {
	deps Deps
}

// Register mounts the contact route for every method; the handler answers
// OPTIONS and POST and refuses the rest itself so CORS headers are never lost
func Register(r httpkit.Router, d Deps) {
	if d.Path == "" {
		d.Path = DefaultPath
	}
	if d.MaxBody <= 0 {
		d.MaxBody = contact.MaxBodyBytes
	}
	h := &handlers{deps: d}
	r.Handle(d.Path, http.HandlerFunc(httpkit.Handle(h.contact)))
}

func (h *handlers) contact(r *http.Request) httpkit.Response {
	resp := h.serve(r)
	return withHeaders(resp, h.deps.Gate.Headers(r.Header.Get("Origin")))
}

func (h *handlers) serve(r *http.Request) httpkit.Response {
	ctx := r.Context()
	svc := h.deps.Svc

	switch r.Method {
	case http.MethodOptions:
		return httpkit.NoContent()
	case http.MethodPost:
	default:
		return httpkit.Error(perr.New(perr.ErrorCodeMethodNotAllowed, domain.MsgMethod)).
			WithHeader("Allow", origin.AllowMethods)
	}

	// declared length only; the body is not touched yet
	if r.ContentLength > h.deps.MaxBody {
		svc.Reject(domain.OutcomeTooLarge)
		return httpkit.Error(perr.New(perr.ErrorCodePayloadTooLarge, domain.MsgTooLarge))
	}

	if err := svc.Misconfigured(ctx); err != nil {
		svc.Reject(domain.OutcomeMisconfigured)
		return httpkit.Error(err)
	}

	addr := h.deps.ClientIP.Resolve(r)
	adm := svc.Admit(ctx, addr)
	if !adm.Allowed {
		svc.Reject(domain.OutcomeRateLimited)
		logger.C(ctx).Info().Int64("retry_after", adm.RetryAfter()).Msg("rate limited")
		resp := httpkit.Error(perr.New(perr.ErrorCodeTooManyRequests, domain.MsgRateLimited)).
			WithHeader("Retry-After", strconv.FormatInt(adm.RetryAfter(), 10))
		return rateHeaders(resp, adm)
	}

	p, err := bind.ParseJSON[contact.Payload](r, bind.JSONOptions{MaxBytes: h.deps.MaxBody})
	if err != nil {
		svc.Reject(domain.OutcomeOf(err))
		return rateHeaders(httpkit.Error(err), adm)
	}

	rec, err := svc.Submit(ctx, domain.Request{
		Payload:   p,
		ClientIP:  addr,
		Origin:    r.Header.Get("Origin"),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		return rateHeaders(httpkit.Error(err), adm)
	}

	_, env := pnet.Success(rec.Message, rec.ReferenceID, pnet.RequestID(ctx))
	return rateHeaders(httpkit.Response{Status: http.StatusOK, Body: env}, adm)
}

// rateHeaders reports the caller's budget; Reset (seconds) only once it is spent
func rateHeaders(resp httpkit.Response, d domain.Admission) httpkit.Response {
	remaining := d.Remaining
	if remaining < 0 || !d.Allowed {
		remaining = 0
	}
	resp = resp.
		WithHeader("X-RateLimit-Limit", strconv.Itoa(d.Limit)).
		WithHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !d.Allowed {
		resp = resp.WithHeader("X-RateLimit-Reset", strconv.FormatInt(d.RetryAfter(), 10))
	}
	return resp
}

// withHeaders sets every value of extra on resp, replacing what was there
func withHeaders(resp httpkit.Response, extra http.Header) httpkit.Response {
	h := http.Header{}
	for k, vv := range resp.Header {
		h[k] = append([]string(nil), vv...)
	}
	for k, vv := range extra {
		h[k] = append([]string(nil), vv...)
	}
	resp.Header = h
	return resp
}
