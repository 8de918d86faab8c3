package delivery

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"strings"

	"contactgate/internal/core/render"
	pstrings "contactgate/internal/platform/strings"
)

const (
	telegramBaseURL = "https://api.telegram.org"
	telegramTextMax = 4096
)

// Telegram sends an HTML formatted bot message to one chat
type Telegram struct {
	base   string
	token  string
	chatID string
	http   httpDoer
}

// TelegramOptions configures the bot channel
type TelegramOptions struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewTelegram builds the bot channel
func NewTelegram(o TelegramOptions) *Telegram {
	return &Telegram{
		base:   strings.TrimRight(pstrings.FirstNonEmpty(o.BaseURL, telegramBaseURL), "/"),
		token:  o.BotToken,
		chatID: o.ChatID,
		http:   newHTTPDoer(o.HTTPClient),
	}
}

// Name implements Channel
func (t *Telegram) Name() string { return "telegram" }

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send implements Channel
func (t *Telegram) Send(ctx context.Context, m render.Message) error {
	body, err := t.http.postJSON(ctx, t.Name(), t.base+"/bot"+t.token+"/sendMessage", nil, telegramMessage{
		ChatID:                t.chatID,
		Text:                  telegramText(m),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}
	var reply telegramReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return failf(err, "telegram: decode reply")
	}
	if !reply.OK {
		return failf(nil, "telegram: not ok: %s", reply.Description)
	}
	return nil
}

// telegramText builds the message in Telegram's HTML subset; every user field is escaped
func telegramText(m render.Message) string {
	s := m.Submission
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(m.Subject) + "</b>\n\n")
	b.WriteString("<b>Name:</b> " + html.EscapeString(s.Payload.Name) + "\n")
	b.WriteString("<b>Email:</b> " + html.EscapeString(s.Payload.Email) + "\n")
	b.WriteString("<b>Reference:</b> <code>" + html.EscapeString(s.ReferenceID) + "</code>\n")
	if s.ClientIP != "" {
		b.WriteString("<b>IP:</b> " + html.EscapeString(s.ClientIP) + "\n")
	}
	b.WriteString("\n")

	// the escaped body may grow; budget what is left for it
	room := telegramTextMax - len([]rune(b.String())) - 16
	body := s.Payload.Message
	for room > 0 && len([]rune(html.EscapeString(body))) > room {
		body = pstrings.Truncate(body, len([]rune(body))*room/len([]rune(html.EscapeString(body))))
	}
	b.WriteString(html.EscapeString(body))
	return b.String()
}
