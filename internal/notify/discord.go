package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const defaultDiscordUsername = "Deivao Recon"

// Discord embed colors per level.
const (
	discordColorInfo    = 3447003
	discordColorSuccess = 5763719
	discordColorWarning = 16776960
	discordColorError   = 15548997
)

// DiscordSender posts messages to a Discord webhook as embeds.
type DiscordSender struct {
	WebhookURL string
	Username   string

	client *http.Client
}

func NewDiscord(webhookURL string) *DiscordSender {
	return &DiscordSender{
		WebhookURL: webhookURL,
		Username:   defaultDiscordUsername,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

func (d *DiscordSender) Name() string { return "discord" }

func (d *DiscordSender) Send(ctx context.Context, msg Message) error {
	payload := BuildDiscordPayload(msg, d.Username)
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return postJSON(ctx, d.client, d.WebhookURL, data)
}

// BuildDiscordPayload builds the webhook embed for one message.
func BuildDiscordPayload(msg Message, username string) map[string]interface{} {
	if username == "" {
		username = defaultDiscordUsername
	}
	return map[string]interface{}{
		"username": username,
		"embeds": []map[string]interface{}{
			{
				"title":       msg.Title,
				"description": msg.Text,
				"color":       DiscordColor(msg.Level),
				"timestamp":   time.Now().Format(time.RFC3339),
			},
		},
	}
}

// DiscordColor maps a level to its embed color.
func DiscordColor(level Level) int {
	switch level {
	case LevelSuccess:
		return discordColorSuccess
	case LevelWarning:
		return discordColorWarning
	case LevelError:
		return discordColorError
	default:
		return discordColorInfo
	}
}
