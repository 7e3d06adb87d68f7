package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	authdomain "kanban-backend/internal/auth/domain"
	boarddomain "kanban-backend/internal/board/domain"
	prefdomain "kanban-backend/internal/preference/domain"
	taskdomain "kanban-backend/internal/task/domain"
	"kanban-backend/pkg/mailer"
)

type fakeDue struct {
	tasks []*taskdomain.Task
}

func (f *fakeDue) FindDueWithin(context.Context, time.Time) ([]*taskdomain.Task, error) {
	return f.tasks, nil
}

type fakeUsers struct{}

func (fakeUsers) FindByIDs(_ context.Context, ids []string) ([]*authdomain.User, error) {
	var out []*authdomain.User
	for _, id := range ids {
		out = append(out, &authdomain.User{ID: id, Email: id + "@example.com", Name: id})
	}
	return out, nil
}

type fakeDigestSettings map[string]prefdomain.DigestSettings

func (f fakeDigestSettings) DigestSettings(_ context.Context, userID string) (prefdomain.DigestSettings, error) {
	if s, ok := f[userID]; ok {
		return s, nil
	}
	return prefdomain.DefaultDigestSettings(), nil
}

type fakeMail struct {
	sent []mailer.Message
}

func (f *fakeMail) Enabled() bool { return true }

func (f *fakeMail) Send(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestDigestSendsOnlyToOptedInUsers(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	yesterday := now.Add(-30 * time.Hour)
	laterToday := now.Add(4 * time.Hour)
	todo := &boarddomain.Column{Title: "To Do"}
	done := &boarddomain.Column{Title: "Done"}

	due := &fakeDue{tasks: []*taskdomain.Task{
		{ID: "t1", Title: "Late report", CreatorID: "alice", DueDate: &yesterday, Priority: taskdomain.PriorityHigh, Column: todo},
		{ID: "t2", Title: "Standup notes", CreatorID: "alice", DueDate: &laterToday, Priority: taskdomain.PriorityLow, Column: todo},
		{ID: "t3", Title: "Shipped", CreatorID: "alice", DueDate: &yesterday, Column: done},
		{ID: "t4", Title: "Bob's task", CreatorID: "bob", DueDate: &laterToday, Column: todo},
	}}
	settings := fakeDigestSettings{
		"alice": {Enabled: true, IncludeOverdue: true, IncludeDueToday: true},
	}
	mail := &fakeMail{}

	d := NewDigest(due, fakeUsers{}, settings, nil, mail, "http://kanban.test")
	d.now = func() time.Time { return now }

	sent, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sent != 1 || len(mail.sent) != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	msg := mail.sent[0]
	if msg.To[0] != "alice@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.TextBody, "Late report (Yesterday") || !strings.Contains(msg.TextBody, "Standup notes (Today") {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	if strings.Contains(msg.TextBody, "Shipped") {
		t.Error("completed task should not be in the digest")
	}
	if strings.Index(msg.TextBody, "Late report") > strings.Index(msg.TextBody, "Standup notes") {
		t.Error("entries should be ordered by due date")
	}
}

type fakeLocations map[string]*time.Location

func (f fakeLocations) Location(_ context.Context, userID string) *time.Location {
	if loc, ok := f[userID]; ok {
		return loc
	}
	return time.UTC
}

func TestDigestUsesRecipientTimezone(t *testing.T) {
	// 20:00 UTC is already the next morning in Tokyo.
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	tokyoMorning := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	todo := &boarddomain.Column{Title: "To Do"}

	due := &fakeDue{tasks: []*taskdomain.Task{
		{ID: "t1", Title: "Client call", CreatorID: "alice", DueDate: &tokyoMorning, Column: todo},
		{ID: "t2", Title: "Client call", CreatorID: "bob", DueDate: &tokyoMorning, Column: todo},
	}}
	on := prefdomain.DigestSettings{Enabled: true, IncludeOverdue: true, IncludeDueToday: true}
	settings := fakeDigestSettings{"alice": on, "bob": on}
	tokyo := time.FixedZone("JST", 9*60*60)
	mail := &fakeMail{}

	d := NewDigest(due, fakeUsers{}, settings, fakeLocations{"alice": tokyo}, mail, "")
	d.now = func() time.Time { return now }

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0].To[0] != "alice@example.com" {
		t.Fatalf("sent = %+v, want only alice", mail.sent)
	}
	if !strings.Contains(mail.sent[0].TextBody, "Client call (Today") {
		t.Errorf("TextBody = %q", mail.sent[0].TextBody)
	}
}
