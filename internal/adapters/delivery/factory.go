package delivery

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Channel kinds accepted in configuration
const (
	KindDiscord  = "discord"
	KindTelegram = "telegram"
	KindResend   = "resend"
	KindMailgun  = "mailgun"
	KindSMTP     = "smtp"
)

// Kinds lists every supported channel
var Kinds = []string{KindDiscord, KindTelegram, KindResend, KindMailgun, KindSMTP}

// Config selects and configures one channel at startup
type Config struct {
	Kind string

	Recipients []string
	Sender     string
	SenderName string

	DiscordWebhookURL string

	TelegramBotToken string
	TelegramChatID   string
	TelegramBaseURL  string

	ResendAPIKey  string
	ResendBaseURL string

	MailgunAPIKey  string
	MailgunDomain  string
	MailgunBaseURL string

	SMTPAddr        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPImplicitTLS bool
	SMTPRequireTLS  bool

	// Every and Burst shape the outbound throttle
	Every time.Duration
	Burst int

	HTTPClient *http.Client
}

// Missing lists the settings the selected kind needs but lacks, by env key suffix
func (c Config) Missing() []string {
	var out []string
	need := func(v, key string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, key)
		}
	}
	needMail := func() {
		if len(c.Recipients) == 0 {
			out = append(out, "RECIPIENT")
		}
		need(c.Sender, "SENDER")
	}

	switch strings.ToLower(c.Kind) {
	case KindDiscord:
		need(c.DiscordWebhookURL, "DISCORD_WEBHOOK_URL")
	case KindTelegram:
		need(c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
		need(c.TelegramChatID, "TELEGRAM_CHAT_ID")
	case KindResend:
		needMail()
		need(c.ResendAPIKey, "RESEND_API_KEY")
	case KindMailgun:
		needMail()
		need(c.MailgunAPIKey, "MAILGUN_API_KEY")
		need(c.MailgunDomain, "MAILGUN_DOMAIN")
	case KindSMTP:
		needMail()
		need(c.SMTPAddr, "SMTP_ADDR")
	default:
		out = append(out, "CHANNEL")
	}
	return out
}

// New builds the configured channel wrapped in its throttle
func New(c Config) (Channel, error) {
	if miss := c.Missing(); len(miss) > 0 {
		return nil, fmt.Errorf("delivery: %s channel missing %s", c.Kind, strings.Join(miss, ", "))
	}

	var ch Channel
	switch strings.ToLower(c.Kind) {
	case KindDiscord:
		ch = NewDiscord(DiscordOptions{WebhookURL: c.DiscordWebhookURL, Username: c.SenderName, HTTPClient: c.HTTPClient})
	case KindTelegram:
		ch = NewTelegram(TelegramOptions{
			BotToken:   c.TelegramBotToken,
			ChatID:     c.TelegramChatID,
			BaseURL:    c.TelegramBaseURL,
			HTTPClient: c.HTTPClient,
		})
	case KindResend:
		ch = NewResend(ResendOptions{
			APIKey:     c.ResendAPIKey,
			From:       c.Sender,
			FromName:   c.SenderName,
			To:         c.Recipients,
			BaseURL:    c.ResendBaseURL,
			HTTPClient: c.HTTPClient,
		})
	case KindMailgun:
		ch = NewMailgun(MailgunOptions{
			APIKey:     c.MailgunAPIKey,
			Domain:     c.MailgunDomain,
			From:       c.Sender,
			FromName:   c.SenderName,
			To:         c.Recipients,
			BaseURL:    c.MailgunBaseURL,
			HTTPClient: c.HTTPClient,
		})
	case KindSMTP:
		ch = NewSMTP(SMTPOptions{
			Addr:        c.SMTPAddr,
			Username:    c.SMTPUsername,
			Password:    c.SMTPPassword,
			From:        c.Sender,
			FromName:    c.SenderName,
			To:          c.Recipients,
			ImplicitTLS: c.SMTPImplicitTLS,
			RequireTLS:  c.SMTPRequireTLS,
		})
	}
	return Throttle(ch, c.Every, c.Burst), nil
}
