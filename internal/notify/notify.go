// Package notify fans run notifications out to the configured channels.
// Delivery is best effort: a channel failing never fails the run.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxRetries  = 3
	httpTimeout = 10 * time.Second
	timeFormat  = "2006-01-02 15:04:05"
)

var rateLimitWait = 2 * time.Second

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is one notification, delivered to every configured channel.
type Message struct {
	Title string
	Text  string
	Level Level
}

// Sender delivers a message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Notifier fans a message out to its senders sequentially. Failures are
// logged at debug level and swallowed.
type Notifier struct {
	senders []Sender
	log     *log.Logger
}

func New(logger *log.Logger, senders ...Sender) *Notifier {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Notifier{senders: senders, log: logger}
}

// Enabled reports whether any channel is configured.
func (n *Notifier) Enabled() bool { return len(n.senders) > 0 }

func (n *Notifier) Send(ctx context.Context, msg Message) {
	for _, s := range n.senders {
		if err := s.Send(ctx, msg); err != nil {
			n.log.Debug("notification failed", "channel", s.Name(), "error", err)
		} else {
			n.log.Debug("notification sent", "channel", s.Name(), "level", msg.Level)
		}
	}
}

// FormatBody renders the canonical markdown body shared by the text
// channels.
func FormatBody(msg Message, at time.Time) string {
	return fmt.Sprintf("**%s**\n\n%s\n\n*%s*", msg.Title, msg.Text, at.Format(timeFormat))
}

// postJSON posts a JSON payload, pausing and retrying when the service
// rate-limits. Other non-2xx statuses fail immediately.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			select {
			case <-time.After(rateLimitWait * time.Duration(attempt+1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			// Status only; the URL may embed a webhook secret.
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
	}
	return fmt.Errorf("rate limited after %d attempts", maxRetries)
}
