package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/ports"
)

func TestLogMailer_WritesCode(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	if err := m.Send(context.Background(), ports.Notification{Username: "alice", Email: "a@example.com", Code: "123456"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), `"confirmation_code":"123456"`) {
		t.Fatalf("code missing from log line: %s", buf.String())
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Addr: "smtp.example.com:587", Username: "u", Password: "p", From: "noreply@yamdb.local"})

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), ports.Notification{Username: "alice", Email: "alice@example.com", Code: "654321"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Errorf("unexpected envelope: addr=%s to=%v", gotAddr, gotTo)
	}
	if gotAuth == nil {
		t.Error("expected PLAIN auth when credentials are set")
	}
	if !strings.Contains(gotMsg, "654321") || !strings.Contains(gotMsg, "Subject: "+subject) {
		t.Errorf("unexpected message: %s", gotMsg)
	}
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Addr: "localhost:25", From: "noreply@yamdb.local"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 service not available") }

	if err := m.Send(context.Background(), ports.Notification{Username: "alice", Email: "alice@example.com"}); err == nil {
		t.Fatal("expected relay error")
	}
	if err := m.Send(context.Background(), ports.Notification{Username: "x", Email: "a@example.com\r\nBcc: b@example.com"}); err == nil {
		t.Fatal("expected header injection to be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, ports.Notification{Username: "alice", Email: "alice@example.com"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
