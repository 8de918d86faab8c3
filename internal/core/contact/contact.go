// Package contact holds the contact form payload, its bounds, and the PII helpers
// every layer uses when it needs to mention a submission in a log line
package contact

import (
	"strings"
	"time"
	"unicode/utf8"

	"contactgate/internal/core/normalize"
	"contactgate/internal/platform/net/http/bind"

	"github.com/rs/zerolog"
)

// Field bounds, counted in characters after normalization
const (
	MaxNameLen    = 100
	MaxEmailLen   = 254
	MaxMessageLen = 5000
	MaxTokenLen   = 4096

	// MaxBodyBytes is the declared Content-Length ceiling checked before the body is read
	MaxBodyBytes = 32 << 10
)

// Payload is what the browser posts
type Payload struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,max=254,email_tld"`
	Message string `json:"message" validate:"required,max=5000"`

	// Token is the human verification response; absent on the first phase
	Token string `json:"turnstileToken,omitempty" validate:"max=4096"`
}

// Normalize cleans every field in place; bind runs it before validation
func (p *Payload) Normalize() {
	p.Name = normalize.Line(p.Name)
	p.Email = normalize.Line(p.Email)
	p.Message = normalize.Text(p.Message)
	p.Token = strings.TrimSpace(p.Token)
}

// Validate normalizes a copy of p and checks it against the field rules
// it returns the normalized copy so callers keep exactly what was validated
func Validate(p Payload) (Payload, error) {
	p.Normalize()
	if err := bind.Validate(p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// WithoutToken returns p with the verification token cleared
func (p Payload) WithoutToken() Payload {
	p.Token = ""
	return p
}

// MarshalZerologObject logs the shape of a payload, never its content
func (p Payload) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", MaskEmail(p.Email)).
		Int("name_len", utf8.RuneCountInString(p.Name)).
		Int("message_len", utf8.RuneCountInString(p.Message)).
		Bool("has_token", p.Token != "")
}

// Submission is a validated payload plus what the edge learned about the request
type Submission struct {
	Payload     Payload
	ReferenceID string
	ClientIP    string
	Origin      string
	UserAgent   string
	ReceivedAt  time.Time
}
