// Package domain holds the contact submission types and the ports the service depends on
package domain

import (
	"context"
	"errors"

	"contactgate/internal/core/contact"
	"contactgate/internal/core/ratelimit"
	perr "contactgate/internal/platform/errors"
)

// Public messages
const (
	MsgSent        = "Message sent successfully."
	MsgRateLimited = "Too many requests. Please try again later."
	MsgTooLarge    = "Request body too large."
	MsgMisconfig   = "Server configuration error."
	MsgMethod      = "Method not allowed."
	MsgDelivery    = "Failed to send message. Please try again later."
)

// Outcome labels the result of one submission attempt in metrics
type Outcome string

// Outcomes
const (
	OutcomeSent          Outcome = "sent"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeTooLarge      Outcome = "body_too_large"
	OutcomeInvalid       Outcome = "invalid_payload"
	OutcomeMissingToken  Outcome = "missing_token"
	OutcomeVerifyFailed  Outcome = "verification_failed"
	OutcomeUnavailable   Outcome = "verification_unavailable"
	OutcomeMisconfigured Outcome = "server_misconfigured"
	OutcomeDelivery      Outcome = "delivery_failed"
	OutcomeCanceled      Outcome = "canceled"
	OutcomeError         Outcome = "error"
)

// Request is one parsed submission plus what the edge knows about its sender
type Request struct {
	Payload   contact.Payload
	ClientIP  string
	Origin    string
	UserAgent string
}

// Receipt is what a successful submission hands back
type Receipt struct {
	ReferenceID string
	Message     string
}

// Admission is the rate limit verdict for one caller
type Admission = ratelimit.Decision

// OutcomeOf maps a submission error to its metrics label
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSent
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCanceled
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeTooManyRequests:
		return OutcomeRateLimited
	case perr.ErrorCodePayloadTooLarge:
		return OutcomeTooLarge
	case perr.ErrorCodeJSON, perr.ErrorCodeValidation:
		return OutcomeInvalid
	case perr.ErrorCodeMissingToken:
		return OutcomeMissingToken
	case perr.ErrorCodeVerification:
		return OutcomeVerifyFailed
	case perr.ErrorCodeUnavailable:
		return OutcomeUnavailable
	case perr.ErrorCodeMisconfigured:
		return OutcomeMisconfigured
	case perr.ErrorCodeDelivery:
		return OutcomeDelivery
	default:
		return OutcomeError
	}
}
