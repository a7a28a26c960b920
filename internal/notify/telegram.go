package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender posts Markdown messages through the Telegram bot API.
type TelegramSender struct {
	Token  string
	ChatID string

	// APIBase is the bot API root, overridable in tests.
	APIBase string

	client *http.Client
}

func NewTelegram(token, chatID string) *TelegramSender {
	return &TelegramSender{
		Token:   token,
		ChatID:  chatID,
		APIBase: defaultTelegramAPI,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

func (t *TelegramSender) Name() string { return "telegram" }

func (t *TelegramSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"chat_id":                  t.ChatID,
		"text":                     BuildTelegramText(msg, time.Now()),
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.Token)
	return postJSON(ctx, t.client, url, data)
}

// BuildTelegramText renders the message body with the level emoji the
// bot uses in place of colors.
func BuildTelegramText(msg Message, at time.Time) string {
	return TelegramEmoji(msg.Level) + " " + FormatBody(msg, at)
}

// TelegramEmoji maps a level to its marker emoji.
func TelegramEmoji(level Level) string {
	switch level {
	case LevelSuccess:
		return "✅"
	case LevelWarning:
		return "⚠️"
	case LevelError:
		return "❌"
	default:
		return "ℹ️"
	}
}
