package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"contactgate/internal/core/render"
	pstrings "contactgate/internal/platform/strings"
)

const resendBaseURL = "https://api.resend.com"

// Resend sends through the Resend email API
type Resend struct {
	base       string
	key        string
	from       string
	recipients []string
	http       httpDoer
}

// ResendOptions configures the Resend channel
type ResendOptions struct {
	APIKey     string
	From       string
	FromName   string
	To         []string
	BaseURL    string
	HTTPClient *http.Client
}

// NewResend builds the Resend channel
func NewResend(o ResendOptions) *Resend {
	return &Resend{
		base:       strings.TrimRight(pstrings.FirstNonEmpty(o.BaseURL, resendBaseURL), "/"),
		key:        o.APIKey,
		from:       mailbox(o.FromName, o.From),
		recipients: o.To,
		http:       newHTTPDoer(o.HTTPClient),
	}
}

// Name implements Channel
func (r *Resend) Name() string { return "resend" }

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

// Send implements Channel
func (r *Resend) Send(ctx context.Context, m render.Message) error {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+r.key)

	email := resendEmail{
		From:    r.from,
		To:      r.recipients,
		Subject: m.Subject,
		HTML:    m.HTML,
		Text:    m.Text,
	}
	if addr := m.Submission.Payload.Email; addr != "" {
		email.ReplyTo = []string{mailbox(m.Submission.Payload.Name, addr)}
	}

	body, err := r.http.postJSON(ctx, r.Name(), r.base+"/emails", hdr, email)
	if err != nil {
		return err
	}
	var reply struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return failf(err, "resend: decode reply")
	}
	if reply.ID == "" {
		return failf(nil, "resend: reply without id: %s", snippet(body))
	}
	return nil
}
