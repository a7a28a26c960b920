package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// EmailSender delivers messages over SMTP, negotiating STARTTLS when
// the server offers it.
type EmailSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

func NewEmail(host string, port int, username, password, from string, to []string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
	}
}

func (e *EmailSender) Name() string { return "email" }

func (e *EmailSender) Send(ctx context.Context, msg Message) error {
	if len(e.To) == 0 {
		return errors.New("no recipients configured")
	}
	addr := net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}
	return smtp.SendMail(addr, auth, e.From, e.To, BuildEmail(e.From, e.To, msg, time.Now()))
}

// BuildEmail renders the RFC 822 message with a level-tagged subject.
func BuildEmail(from string, to []string, msg Message, at time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: [%s] %s\r\n", strings.ToUpper(string(msg.Level)), msg.Title)
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")
	return b.Bytes()
}
