package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"contactgate/internal/core/render"
	pstrings "contactgate/internal/platform/strings"
)

const mailgunBaseURL = "https://api.mailgun.net"

// Mailgun sends through the Mailgun messages API of one sending domain
type Mailgun struct {
	base       string
	domain     string
	key        string
	from       string
	recipients []string
	http       httpDoer
}

// MailgunOptions configures the Mailgun channel; BaseURL selects the region
type MailgunOptions struct {
	APIKey     string
	Domain     string
	From       string
	FromName   string
	To         []string
	BaseURL    string
	HTTPClient *http.Client
}

// NewMailgun builds the Mailgun channel
func NewMailgun(o MailgunOptions) *Mailgun {
	return &Mailgun{
		base:       strings.TrimRight(pstrings.FirstNonEmpty(o.BaseURL, mailgunBaseURL), "/"),
		domain:     o.Domain,
		key:        o.APIKey,
		from:       mailbox(o.FromName, o.From),
		recipients: o.To,
		http:       newHTTPDoer(o.HTTPClient),
	}
}

// Name implements Channel
func (g *Mailgun) Name() string { return "mailgun" }

// Send implements Channel
func (g *Mailgun) Send(ctx context.Context, m render.Message) error {
	form := url.Values{}
	form.Set("from", g.from)
	for _, to := range g.recipients {
		form.Add("to", to)
	}
	form.Set("subject", m.Subject)
	form.Set("text", m.Text)
	form.Set("html", m.HTML)
	if addr := m.Submission.Payload.Email; addr != "" {
		form.Set("h:Reply-To", mailbox(m.Submission.Payload.Name, addr))
	}
	form.Set("v:reference", m.Submission.ReferenceID)

	endpoint := g.base + "/v3/" + url.PathEscape(g.domain) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failf(err, "mailgun: build request")
	}
	req.SetBasicAuth("api", g.key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := g.http.do(req, g.Name())
	if err != nil {
		return err
	}
	var reply struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return failf(err, "mailgun: decode reply")
	}
	if reply.ID == "" {
		return failf(nil, "mailgun: reply without id: %s", snippet(body))
	}
	return nil
}
