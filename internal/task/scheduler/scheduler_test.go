package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	boarddomain "kanban-backend/internal/board/domain"
	notifdomain "kanban-backend/internal/notification/domain"
	prefdomain "kanban-backend/internal/preference/domain"
	"kanban-backend/internal/task/domain"
	"kanban-backend/internal/task/repository"
	"kanban-backend/pkg/kvstore"
)

type fakeTaskRepo struct {
	repository.TaskRepository

	due     []*domain.Task
	pending []*domain.Task
	marked  []string
}

func (f *fakeTaskRepo) FindDueWithin(context.Context, time.Time) ([]*domain.Task, error) {
	return f.due, nil
}

func (f *fakeTaskRepo) FindPendingReminders(context.Context, time.Time) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range f.pending {
		if !t.ReminderSent {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) MarkReminderSent(_ context.Context, id string) error {
	f.marked = append(f.marked, id)
	for _, t := range f.pending {
		if t.ID == id {
			t.ReminderSent = true
		}
	}
	return nil
}

type sentMessage struct {
	userID string
	msg    notifdomain.Message
}

type fakeNotifier struct {
	sent      []sentMessage
	settings  map[string]prefdomain.NotificationSettings
	locations map[string]*time.Location
	err       error
}

func (f *fakeNotifier) Location(_ context.Context, userID string) *time.Location {
	if loc, ok := f.locations[userID]; ok {
		return loc
	}
	return time.UTC
}

func (f *fakeNotifier) Notify(_ context.Context, userID string, msg notifdomain.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{userID: userID, msg: msg})
	return nil
}

func (f *fakeNotifier) Settings(_ context.Context, userID string) prefdomain.NotificationSettings {
	if s, ok := f.settings[userID]; ok {
		return s
	}
	return prefdomain.DefaultNotificationSettings()
}

func newScheduler(repo *fakeTaskRepo, notifier *fakeNotifier, now time.Time) *TaskReminderScheduler {
	s := NewTaskReminderScheduler(repo, notifier, NewDeduper(kvstore.NewMemoryStore(), 0), "http://kanban.test")
	s.now = func() time.Time { return now }
	return s
}

func TestScanNotifiesEachBucketOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(20 * time.Minute)
	todo := &boarddomain.Column{Title: "To Do"}
	repo := &fakeTaskRepo{due: []*domain.Task{
		{ID: "t1", BoardID: "b1", Title: "Call", CreatorID: "u1", DueDate: &soon, Column: todo},
	}}
	notifier := &fakeNotifier{}
	s := newScheduler(repo, notifier, now)

	if got := s.RunOnce(context.Background()); got != 1 {
		t.Fatalf("first scan sent %d, want 1", got)
	}
	if got := s.RunOnce(context.Background()); got != 0 {
		t.Errorf("second scan sent %d, want 0", got)
	}

	msg := notifier.sent[0].msg
	if msg.Data["bucket"] != string(domain.Bucket15Min) || msg.Tag != "task-t1-15min" {
		t.Errorf("message = %+v", msg)
	}

	// Crossing into the next bucket fires again.
	s.now = func() time.Time { return soon.Add(2 * time.Minute) }
	if got := s.RunOnce(context.Background()); got != 1 {
		t.Errorf("overdue scan sent %d, want 1", got)
	}
	if notifier.sent[1].msg.Data["bucket"] != string(domain.BucketOverdue) || !notifier.sent[1].msg.RequireInteraction {
		t.Errorf("overdue message = %+v", notifier.sent[1].msg)
	}
}

func TestScanSkipsDoneColumnsAndMissingDueDates(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(10 * time.Minute)
	repo := &fakeTaskRepo{due: []*domain.Task{
		{ID: "done", Title: "Finished", CreatorID: "u1", DueDate: &soon, Column: &boarddomain.Column{Title: " DONE "}},
		{ID: "nodue", Title: "Someday", CreatorID: "u1", Column: &boarddomain.Column{Title: "To Do"}},
	}}
	notifier := &fakeNotifier{}

	if got := newScheduler(repo, notifier, now).RunOnce(context.Background()); got != 0 {
		t.Errorf("sent %d, want 0", got)
	}
}

func TestScanSendsToAssigneesAndHonoursSettings(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := now.Add(20 * time.Hour)
	repo := &fakeTaskRepo{due: []*domain.Task{{
		ID: "t1", Title: "Review", CreatorID: "u1", DueDate: &tomorrow,
		Column:    &boarddomain.Column{Title: "In Progress"},
		Assignees: []domain.TaskAssignee{{UserID: "u2"}, {UserID: "u3"}},
	}}}
	notifier := &fakeNotifier{settings: map[string]prefdomain.NotificationSettings{
		"u3": {Enabled: true, Buckets: map[string]bool{"1day": false}},
	}}

	newScheduler(repo, notifier, now).RunOnce(context.Background())

	if len(notifier.sent) != 1 || notifier.sent[0].userID != "u2" {
		t.Errorf("sent = %+v, want only u2", notifier.sent)
	}
}

func TestScanIgnoresLongOverdueTasks(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	repo := &fakeTaskRepo{due: []*domain.Task{
		{ID: "old", Title: "Ancient", CreatorID: "u1", DueDate: &lastWeek, Column: &boarddomain.Column{Title: "To Do"}},
	}}
	notifier := &fakeNotifier{}

	if got := newScheduler(repo, notifier, now).RunOnce(context.Background()); got != 0 {
		t.Errorf("sent %d, want 0", got)
	}
}

func TestExplicitReminderSentOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Minute)
	repo := &fakeTaskRepo{pending: []*domain.Task{
		{ID: "t1", Title: "Pay rent", CreatorID: "u1", ReminderAt: &at, Priority: domain.PriorityHigh},
	}}
	notifier := &fakeNotifier{}
	s := newScheduler(repo, notifier, now)

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d reminders, want 1", len(notifier.sent))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "t1" {
		t.Errorf("marked = %v", repo.marked)
	}
	if notifier.sent[0].msg.Data["type"] != "task_reminder" {
		t.Errorf("type = %q", notifier.sent[0].msg.Data["type"])
	}
}

func TestScanRetriesFailedDelivery(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(45 * time.Minute)
	repo := &fakeTaskRepo{due: []*domain.Task{
		{ID: "t1", BoardID: "b1", Title: "Ship", CreatorID: "u1", DueDate: &soon, Column: &boarddomain.Column{Title: "To Do"}},
	}}
	notifier := &fakeNotifier{err: errors.New("database is locked")}
	s := newScheduler(repo, notifier, now)

	if got := s.RunOnce(context.Background()); got != 0 {
		t.Fatalf("failing scan sent %d, want 0", got)
	}

	notifier.err = nil
	if got := s.RunOnce(context.Background()); got != 1 {
		t.Errorf("retry scan sent %d, want 1", got)
	}
	if got := s.RunOnce(context.Background()); got != 0 {
		t.Errorf("third scan sent %d, want 0", got)
	}
}

func TestScanKeepsClaimWhenEveryoneOptedOut(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(45 * time.Minute)
	repo := &fakeTaskRepo{due: []*domain.Task{
		{ID: "t1", BoardID: "b1", Title: "Ship", CreatorID: "u1", DueDate: &soon, Column: &boarddomain.Column{Title: "To Do"}},
	}}
	notifier := &fakeNotifier{settings: map[string]prefdomain.NotificationSettings{
		"u1": {Enabled: true, Buckets: map[string]bool{"1hour": false}},
	}}
	s := newScheduler(repo, notifier, now)
	s.RunOnce(context.Background())

	claimed, err := s.dedupe.Claim(context.Background(), "t1", domain.Bucket1Hour)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed {
		t.Error("claim was released although no delivery was attempted")
	}
}

func TestReminderLabelsUseRecipientTimezone(t *testing.T) {
	// 23:30 UTC; a task due at 00:45 UTC is "Tomorrow" in UTC and still
	// "Today" two hours west.
	now := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	due := time.Date(2024, 5, 2, 0, 45, 0, 0, time.UTC)
	repo := &fakeTaskRepo{due: []*domain.Task{{
		ID: "t1", Title: "Deploy", CreatorID: "u1", DueDate: &due,
		Column:    &boarddomain.Column{Title: "To Do"},
		Assignees: []domain.TaskAssignee{{UserID: "u1"}, {UserID: "u2"}},
	}}}
	notifier := &fakeNotifier{locations: map[string]*time.Location{
		"u2": time.FixedZone("UTC-2", -2*60*60),
	}}

	newScheduler(repo, notifier, now).RunOnce(context.Background())

	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d, want 2", len(notifier.sent))
	}
	bodies := map[string]string{}
	for _, s := range notifier.sent {
		bodies[s.userID] = s.msg.Body
	}
	if bodies["u1"] != "Due: Tomorrow" || bodies["u2"] != "Due: Today" {
		t.Errorf("bodies = %v", bodies)
	}
}
