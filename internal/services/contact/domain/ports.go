package domain

import (
	"context"

	"contactgate/internal/core/contact"
	"contactgate/internal/core/ratelimit"
	"contactgate/internal/core/render"
)

// Limiter admits or rejects a caller by address
type Limiter interface {
	Check(ctx context.Context, addr string) (ratelimit.Decision, error)
	Policy() ratelimit.Policy
}

// Verifier proves a token came from a human; the error carries the perr code
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Issuer mints reference ids
type Issuer interface {
	Issue() (string, error)
}

// Renderer turns a submission into subject, text, and HTML
type Renderer interface {
	Render(s contact.Submission) (render.Message, error)
}

// Channel hands a rendered message to one downstream transport
type Channel interface {
	Name() string
	Send(ctx context.Context, m render.Message) error
}

// StoreHealth is the readiness view of the rate limit store
type StoreHealth interface {
	Ping(ctx context.Context) error
	Backend() string
}

// Submitter is the port the HTTP layer drives
type Submitter interface {
	// Misconfigured reports missing server settings as an ErrorCodeMisconfigured error
	Misconfigured(ctx context.Context) error
	// Admit counts one request for addr; store failures fail open
	Admit(ctx context.Context, addr string) Admission
	// Submit verifies, renders, and delivers one validated request
	Submit(ctx context.Context, req Request) (Receipt, error)
	// Reject records an attempt that ended before Submit
	Reject(outcome Outcome)
}
