package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Slack attachment colors per level.
const (
	slackColorInfo    = "#3498db"
	slackColorSuccess = "#2ecc71"
	slackColorWarning = "#f1c40f"
	slackColorError   = "#e74c3c"
)

// SlackSender posts messages to a Slack incoming webhook as attachments.
type SlackSender struct {
	WebhookURL string

	client *http.Client
}

func NewSlack(webhookURL string) *SlackSender {
	return &SlackSender{
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

func (s *SlackSender) Name() string { return "slack" }

func (s *SlackSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(BuildSlackPayload(msg))
	if err != nil {
		return err
	}
	return postJSON(ctx, s.client, s.WebhookURL, data)
}

// BuildSlackPayload builds the webhook attachment for one message.
func BuildSlackPayload(msg Message) map[string]interface{} {
	return map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color": SlackColor(msg.Level),
				"title": msg.Title,
				"text":  msg.Text,
				"ts":    time.Now().Unix(),
			},
		},
	}
}

// SlackColor maps a level to its attachment color.
func SlackColor(level Level) string {
	switch level {
	case LevelSuccess:
		return slackColorSuccess
	case LevelWarning:
		return slackColorWarning
	case LevelError:
		return slackColorError
	default:
		return slackColorInfo
	}
}
