package mailer

import (
	"bytes"
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/emersion/go-message/mail"
)

func TestSendComposesMultipartMessage(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotRaw []byte
	m := NewWithSender(Config{Host: "smtp.test", Port: 2525, From: "Kanban <noreply@kanban.test>"},
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotRaw = addr, to, msg
			return nil
		})

	err := m.Send(context.Background(), Message{
		To:       []string{"ana@example.com"},
		Subject:  "Your daily digest",
		TextBody: "2 tasks due today",
		HTMLBody: "<p>2 tasks due today</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "smtp.test:2525" {
		t.Errorf("addr = %q", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "ana@example.com" {
		t.Errorf("to = %v", gotTo)
	}

	r, err := mail.CreateReader(bytes.NewReader(gotRaw))
	if err != nil {
		t.Fatalf("parse composed message: %v", err)
	}
	subject, _ := r.Header.Subject()
	if subject != "Your daily digest" {
		t.Errorf("subject = %q", subject)
	}

	var parts int
	for {
		p, err := r.NextPart()
		if err != nil {
			break
		}
		if _, ok := p.Header.(*mail.InlineHeader); ok {
			parts++
		}
	}
	if parts != 2 {
		t.Errorf("inline parts = %d, want 2", parts)
	}
}

func TestSendRequiresConfiguration(t *testing.T) {
	m := New(Config{})
	if m.Enabled() {
		t.Fatal("empty config should not be enabled")
	}
	err := m.Send(context.Background(), Message{To: []string{"a@b.c"}})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("Send() error = %v", err)
	}
}
