package delivery

import (
	"context"
	"net/http"
	"strings"
	"time"

	"contactgate/internal/core/render"
	pstrings "contactgate/internal/platform/strings"
)

// Discord embed limits
const (
	discordFieldMax = 1024
	discordDescMax  = 4096
	discordTitleMax = 256
	discordColor    = 0x5865F2
)

// Discord posts an embed to a webhook
type Discord struct {
	webhook  string
	username string
	http     httpDoer
}

// DiscordOptions configures the webhook channel
type DiscordOptions struct {
	WebhookURL string
	Username   string
	HTTPClient *http.Client
}

// NewDiscord builds the webhook channel
func NewDiscord(o DiscordOptions) *Discord {
	return &Discord{
		webhook:  o.WebhookURL,
		username: pstrings.FirstNonEmpty(o.Username, "Contact Form"),
		http:     newHTTPDoer(o.HTTPClient),
	}
}

// Name implements Channel
func (d *Discord) Name() string { return "discord" }

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Username        string         `json:"username"`
	Embeds          []discordEmbed `json:"embeds"`
	AllowedMentions map[string]any `json:"allowed_mentions"`
}

// Send implements Channel
func (d *Discord) Send(ctx context.Context, m render.Message) error {
	s := m.Submission
	fields := []discordField{
		{Name: "Name", Value: fieldValue(s.Payload.Name), Inline: true},
		{Name: "Email", Value: fieldValue(s.Payload.Email), Inline: true},
		{Name: "Reference", Value: fieldValue(s.ReferenceID), Inline: true},
	}
	if s.ClientIP != "" {
		fields = append(fields, discordField{Name: "IP", Value: fieldValue(s.ClientIP), Inline: true})
	}
	if s.Origin != "" {
		fields = append(fields, discordField{Name: "Origin", Value: fieldValue(s.Origin), Inline: true})
	}

	body := discordPayload{
		Username: d.username,
		Embeds: []discordEmbed{{
			Title:       pstrings.Truncate(m.Subject, discordTitleMax),
			Description: pstrings.Truncate(s.Payload.Message, discordDescMax),
			Color:       discordColor,
			Fields:      fields,
			Footer:      &discordFooter{Text: s.ReferenceID},
			Timestamp:   s.ReceivedAt.UTC().Format(time.RFC3339),
		}},
		// no @everyone or role pings from visitor text
		AllowedMentions: map[string]any{"parse": []string{}},
	}
	_, err := d.http.postJSON(ctx, d.Name(), d.webhook, nil, body)
	return err
}

func fieldValue(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return pstrings.Truncate(s, discordFieldMax)
}
