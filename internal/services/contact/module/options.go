package module

import (
	"net/http"
	"strings"
	"time"

	"contactgate/internal/adapters/delivery"
	"contactgate/internal/adapters/ratestore"
	"contactgate/internal/adapters/siteverify"
	"contactgate/internal/core/ratelimit"
	"contactgate/internal/core/refid"
	"contactgate/internal/core/render"
	"contactgate/internal/platform/config"
	pnet "contactgate/internal/platform/net"
	contacthttp "contactgate/internal/services/contact/http"
)

// EnvPrefix namespaces every contact setting
const EnvPrefix = "CONTACT_"

// Options holds configuration settings for the contact module
type Options struct {
	Path string

	TurnstileSecret string
	VerifyURL       string
	VerifyMinScore  float64
	VerifyTimeout   time.Duration

	TemplateStyle   string
	SubjectPrefix   string
	ReferencePrefix string

	AllowedOrigins []string
	DefaultOrigin  string

	// ClientIPHeader names the proxy header carrying the caller address; empty
	// keys the rate limit on the socket peer
	ClientIPHeader string
	// TrustedProxies restricts which peers may set ClientIPHeader
	TrustedProxies []string

	RedisURL       string
	RateLimit      int
	RateWindow     time.Duration
	RateSweepAbove int

	Delivery        delivery.Config
	DeliveryTimeout time.Duration

	// HTTPClient is shared by the verifier and the HTTP delivery channels; nil uses their defaults
	HTTPClient *http.Client
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix(EnvPrefix)
	return Options{
		Path: c.MayString("PATH", contacthttp.DefaultPath),

		TurnstileSecret: c.MayString("TURNSTILE_SECRET", ""),
		VerifyURL:       c.MayString("VERIFY_URL", siteverify.TurnstileURL),
		VerifyMinScore:  c.MayFloat64("VERIFY_MIN_SCORE", 0),
		VerifyTimeout:   c.MayDuration("VERIFY_TIMEOUT", 10*time.Second),

		TemplateStyle:   strings.ToLower(c.MayString("TEMPLATE_STYLE", string(render.StyleCard))),
		SubjectPrefix:   c.MayString("SUBJECT_PREFIX", render.DefaultSubjectPrefix),
		ReferencePrefix: c.MayString("REFERENCE_PREFIX", refid.DefaultPrefix),

		AllowedOrigins: c.MayCSV("ALLOWED_ORIGINS", nil),
		DefaultOrigin:  c.MayString("DEFAULT_ORIGIN", ""),

		ClientIPHeader: c.MayString("CLIENT_IP_HEADER", ""),
		TrustedProxies: c.MayCSV("TRUSTED_PROXIES", nil),

		RedisURL:       c.MayString("REDIS_URL", ""),
		RateLimit:      c.MayInt("RATE_LIMIT", ratelimit.DefaultLimit),
		RateWindow:     c.MayDuration("RATE_WINDOW", ratelimit.DefaultWindow),
		RateSweepAbove: c.MayInt("RATE_SWEEP_ABOVE", ratestore.DefaultSweepAbove),

		Delivery: delivery.Config{
			Kind:       c.MayEnum("CHANNEL", "", delivery.Kinds...),
			Recipients: c.MayCSV("RECIPIENT", nil),
			Sender:     c.MayString("SENDER", ""),
			SenderName: c.MayString("SENDER_NAME", "Contact Form"),

			DiscordWebhookURL: c.MayString("DISCORD_WEBHOOK_URL", ""),

			TelegramBotToken: c.MayString("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:   c.MayString("TELEGRAM_CHAT_ID", ""),
			TelegramBaseURL:  c.MayString("TELEGRAM_BASE_URL", ""),

			ResendAPIKey:  c.MayString("RESEND_API_KEY", ""),
			ResendBaseURL: c.MayString("RESEND_BASE_URL", ""),

			MailgunAPIKey:  c.MayString("MAILGUN_API_KEY", ""),
			MailgunDomain:  c.MayString("MAILGUN_DOMAIN", ""),
			MailgunBaseURL: c.MayString("MAILGUN_BASE_URL", ""),

			SMTPAddr:        c.MayString("SMTP_ADDR", ""),
			SMTPUsername:    c.MayString("SMTP_USERNAME", ""),
			SMTPPassword:    c.MayString("SMTP_PASSWORD", ""),
			SMTPImplicitTLS: c.MayBool("SMTP_IMPLICIT_TLS", false),
			SMTPRequireTLS:  c.MayBool("SMTP_REQUIRE_TLS", false),

			Every: c.MayDuration("DELIVERY_EVERY", 0),
			Burst: c.MayInt("DELIVERY_BURST", 1),
		},
		DeliveryTimeout: c.MayDuration("DELIVERY_TIMEOUT", 15*time.Second),
	}
}

// missing lists the unset required settings as full env keys
func (o Options) missing() []string {
	var out []string
	if strings.TrimSpace(o.TurnstileSecret) == "" {
		out = append(out, EnvPrefix+"TURNSTILE_SECRET")
	}
	switch render.Style(o.TemplateStyle) {
	case "", render.StyleCard, render.StyleMinimal:
	default:
		out = append(out, EnvPrefix+"TEMPLATE_STYLE")
	}
	if _, err := o.ClientIPPolicy(); err != nil {
		out = append(out, EnvPrefix+"TRUSTED_PROXIES")
	}
	for _, k := range o.Delivery.Missing() {
		out = append(out, EnvPrefix+k)
	}
	return out
}

// ClientIPPolicy builds the caller address policy from ClientIPHeader and TrustedProxies
func (o Options) ClientIPPolicy() (pnet.ClientIPPolicy, error) {
	trusted, err := pnet.ParseTrusted(o.TrustedProxies)
	if err != nil {
		return pnet.ClientIPPolicy{}, err
	}
	return pnet.ClientIPPolicy{Header: strings.TrimSpace(o.ClientIPHeader), Trusted: trusted}, nil
}
