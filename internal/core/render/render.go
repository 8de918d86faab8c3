// Package render turns a submission into the subject, plain text, and HTML every
// delivery channel sends. User fields are escaped by html/template.
package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"contactgate/internal/core/contact"
	pstrings "contactgate/internal/platform/strings"
)

//go:embed templates/*.tmpl
var files embed.FS

// Style picks the HTML layout
type Style string

// Styles
const (
	StyleCard    Style = "card"
	StyleMinimal Style = "minimal"
)

// DefaultSubjectPrefix is used when none is configured
const DefaultSubjectPrefix = "[Contact]"

// Message is a rendered submission
type Message struct {
	Submission contact.Submission
	Subject    string
	Text       string
	HTML       string
}

// Renderer holds parsed templates; safe for concurrent use
type Renderer struct {
	text   *texttemplate.Template
	html   *htmltemplate.Template
	prefix string
	style  Style
	zone   *time.Location
}

// view is the flat model both templates see
type view struct {
	ReferenceID string
	Received    string
	Name        string
	Email       string
	ClientIP    string
	Origin      string
	Body        string
}

// New parses the templates for style; an unknown style is an error
func New(style Style, subjectPrefix string) (*Renderer, error) {
	if style == "" {
		style = StyleCard
	}
	var htmlFile string
	switch style {
	case StyleCard:
		htmlFile = "templates/card.html.tmpl"
	case StyleMinimal:
		htmlFile = "templates/minimal.html.tmpl"
	default:
		return nil, fmt.Errorf("render: unknown style %q", style)
	}

	txt, err := texttemplate.ParseFS(files, "templates/message.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse text: %w", err)
	}
	html, err := htmltemplate.ParseFS(files, htmlFile)
	if err != nil {
		return nil, fmt.Errorf("render: parse html: %w", err)
	}
	return &Renderer{
		text:   txt,
		html:   html,
		prefix: pstrings.FirstNonEmpty(strings.TrimSpace(subjectPrefix), DefaultSubjectPrefix),
		style:  style,
		zone:   time.UTC,
	}, nil
}

// Style reports the HTML layout in use
func (r *Renderer) Style() Style { return r.style }

// Subject builds the subject line; Name is already a single normalized line
func (r *Renderer) Subject(s contact.Submission) string {
	return r.prefix + " New message from " + pstrings.Truncate(s.Payload.Name, 60)
}

// Render executes both templates
func (r *Renderer) Render(s contact.Submission) (Message, error) {
	v := view{
		ReferenceID: s.ReferenceID,
		Received:    s.ReceivedAt.In(r.zone).Format(time.RFC1123),
		Name:        s.Payload.Name,
		Email:       s.Payload.Email,
		ClientIP:    s.ClientIP,
		Origin:      s.Origin,
		Body:        s.Payload.Message,
	}

	var tb, hb bytes.Buffer
	if err := r.text.Execute(&tb, v); err != nil {
		return Message{}, fmt.Errorf("render: text: %w", err)
	}
	if err := r.html.Execute(&hb, v); err != nil {
		return Message{}, fmt.Errorf("render: html: %w", err)
	}
	return Message{
		Submission: s,
		Subject:    r.Subject(s),
		Text:       tb.String(),
		HTML:       hb.String(),
	}, nil
}
