// Package notify delivers confirmation codes to users.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/ports"
)

const subject = "YaMDb confirmation code"

// LogMailer writes codes to the structured log instead of sending mail.
// Intended for development and tests.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, n ports.Notification) error {
	m.log.Info().
		Str("username", n.Username).
		Str("email", n.Email).
		Str("confirmation_code", n.Code).
		Msg("confirmation code")
	return nil
}

// SMTPConfig holds the outgoing mail relay settings.
type SMTPConfig struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
}

// SMTPMailer sends codes through an SMTP relay with PLAIN auth when
// credentials are configured.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(n.Email, "\r\n") {
		return fmt.Errorf("smtp: invalid recipient %q", n.Email)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		host, _, err := net.SplitHostPort(m.cfg.Addr)
		if err != nil {
			return fmt.Errorf("smtp: parse addr: %w", err)
		}
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)
	}

	if err := m.send(m.cfg.Addr, auth, m.cfg.From, []string{n.Email}, m.message(n)); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", n.Username, err)
	}
	return nil
}

func (m *SMTPMailer) message(n ports.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", n.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\nYour confirmation code is %s.\r\n", n.Username, n.Code)
	return []byte(b.String())
}
