package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DavidJovino/deivao-recon/internal/notify"
)

type stubSender struct {
	name   string
	err    error
	called int
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Send(ctx context.Context, msg notify.Message) error {
	s.called++
	return s.err
}

func TestNotifierSwallowsFailures(t *testing.T) {
	bad := &stubSender{name: "bad", err: errors.New("boom")}
	good := &stubSender{name: "good"}
	n := notify.New(nil, bad, good)

	n.Send(context.Background(), notify.Message{Title: "t", Text: "x", Level: notify.LevelInfo})

	if bad.called != 1 || good.called != 1 {
		t.Errorf("calls = %d/%d, want both senders tried", bad.called, good.called)
	}
}

func TestNotifierEnabled(t *testing.T) {
	if notify.New(nil).Enabled() {
		t.Error("Enabled() = true with no senders")
	}
	if !notify.New(nil, &stubSender{name: "s"}).Enabled() {
		t.Error("Enabled() = false with a sender")
	}
}

func TestFormatBody(t *testing.T) {
	at := time.Date(2026, 8, 23, 14, 5, 2, 0, time.UTC)
	got := notify.FormatBody(notify.Message{Title: "T", Text: "x"}, at)
	want := "**T**\n\nx\n\n*2026-08-23 14:05:02*"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildDiscordPayload(t *testing.T) {
	msg := notify.Message{Title: "Run finished", Text: "3 hosts", Level: notify.LevelError}
	payload := notify.BuildDiscordPayload(msg, "")

	if payload["username"] != "Deivao Recon" {
		t.Errorf("username = %v, want the default", payload["username"])
	}
	embeds, ok := payload["embeds"].([]map[string]interface{})
	if !ok || len(embeds) != 1 {
		t.Fatalf("embeds = %v, want one embed", payload["embeds"])
	}
	if embeds[0]["title"] != "Run finished" || embeds[0]["description"] != "3 hosts" {
		t.Errorf("embed = %v", embeds[0])
	}
	if embeds[0]["color"] != 15548997 {
		t.Errorf("color = %v, want the error color", embeds[0]["color"])
	}
}

func TestDiscordColor(t *testing.T) {
	tests := []struct {
		level notify.Level
		want  int
	}{
		{notify.LevelInfo, 3447003},
		{notify.LevelSuccess, 5763719},
		{notify.LevelWarning, 16776960},
		{notify.LevelError, 15548997},
		{notify.Level("odd"), 3447003},
	}
	for _, tt := range tests {
		if got := notify.DiscordColor(tt.level); got != tt.want {
			t.Errorf("DiscordColor(%q) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestBuildSlackPayload(t *testing.T) {
	msg := notify.Message{Title: "Run finished", Text: "3 hosts", Level: notify.LevelSuccess}
	payload := notify.BuildSlackPayload(msg)

	atts, ok := payload["attachments"].([]map[string]interface{})
	if !ok || len(atts) != 1 {
		t.Fatalf("attachments = %v, want one attachment", payload["attachments"])
	}
	if atts[0]["color"] != "#2ecc71" {
		t.Errorf("color = %v, want the success color", atts[0]["color"])
	}
	if atts[0]["title"] != "Run finished" || atts[0]["text"] != "3 hosts" {
		t.Errorf("attachment = %v", atts[0])
	}
}

func TestSlackColor(t *testing.T) {
	tests := []struct {
		level notify.Level
		want  string
	}{
		{notify.LevelInfo, "#3498db"},
		{notify.LevelSuccess, "#2ecc71"},
		{notify.LevelWarning, "#f1c40f"},
		{notify.LevelError, "#e74c3c"},
	}
	for _, tt := range tests {
		if got := notify.SlackColor(tt.level); got != tt.want {
			t.Errorf("SlackColor(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestBuildTelegramText(t *testing.T) {
	at := time.Date(2026, 8, 23, 14, 5, 2, 0, time.UTC)
	msg := notify.Message{Title: "T", Text: "x", Level: notify.LevelSuccess}

	got := notify.BuildTelegramText(msg, at)
	want := "✅ **T**\n\nx\n\n*2026-08-23 14:05:02*"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTelegramEmoji(t *testing.T) {
	tests := []struct {
		level notify.Level
		want  string
	}{
		{notify.LevelInfo, "ℹ️"},
		{notify.LevelSuccess, "✅"},
		{notify.LevelWarning, "⚠️"},
		{notify.LevelError, "❌"},
	}
	for _, tt := range tests {
		if got := notify.TelegramEmoji(tt.level); got != tt.want {
			t.Errorf("TelegramEmoji(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestBuildEmail(t *testing.T) {
	at := time.Date(2026, 8, 23, 14, 5, 2, 0, time.UTC)
	msg := notify.Message{Title: "Disk low", Text: "almost full", Level: notify.LevelWarning}

	mail := string(notify.BuildEmail("a@x.com", []string{"b@x.com", "c@x.com"}, msg, at))
	for _, want := range []string{
		"From: a@x.com\r\n",
		"To: b@x.com, c@x.com\r\n",
		"Subject: [WARNING] Disk low\r\n",
		"\r\n\r\nalmost full\r\n",
	} {
		if !strings.Contains(mail, want) {
			t.Errorf("mail missing %q:\n%s", want, mail)
		}
	}
}

func TestDiscordSendDelivers(t *testing.T) {
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body.Store(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := notify.NewDiscord(srv.URL)
	err := d.Send(context.Background(), notify.Message{Title: "t", Text: "x", Level: notify.LevelInfo})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body.Load().([]byte), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload["username"] != "Deivao Recon" {
		t.Errorf("username = %v", payload["username"])
	}
	if _, ok := payload["embeds"]; !ok {
		t.Errorf("payload has no embeds: %v", payload)
	}
}

func TestDiscordSendRetriesOn429(t *testing.T) {
	restore := notify.SetRateLimitWaitForTest(time.Millisecond)
	defer restore()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := notify.NewDiscord(srv.URL)
	if err := d.Send(context.Background(), notify.Message{Title: "t"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("hits = %d, want 3", got)
	}
}

func TestDiscordSendGivesUpWhenRateLimited(t *testing.T) {
	restore := notify.SetRateLimitWaitForTest(time.Millisecond)
	defer restore()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := notify.NewDiscord(srv.URL)
	err := d.Send(context.Background(), notify.Message{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("Send error = %v, want rate limited", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("hits = %d, want 3 attempts", got)
	}
}

func TestDiscordSendFailsOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := notify.NewDiscord(srv.URL)
	err := d.Send(context.Background(), notify.Message{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("Send error = %v, want a status failure", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("hits = %d, want no retry on a hard failure", got)
	}
}

func TestTelegramSendHitsBotPath(t *testing.T) {
	var path atomic.Value
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		body.Store(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := notify.NewTelegram("tok", "42")
	tg.APIBase = srv.URL
	if err := tg.Send(context.Background(), notify.Message{Title: "t", Text: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := path.Load().(string); got != "/bottok/sendMessage" {
		t.Errorf("path = %q, want /bottok/sendMessage", got)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body.Load().([]byte), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload["chat_id"] != "42" {
		t.Errorf("chat_id = %v, want 42", payload["chat_id"])
	}
	if payload["parse_mode"] != "Markdown" {
		t.Errorf("parse_mode = %v, want Markdown", payload["parse_mode"])
	}
}
