package notification

import (
	"context"
	"errors"
	"testing"

	authdomain "kanban-backend/internal/auth/domain"
	"kanban-backend/internal/notification/domain"
	"kanban-backend/internal/notification/repository"
	prefdomain "kanban-backend/internal/preference/domain"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/fcm"
	"kanban-backend/pkg/realtime"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Notification{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

type fakeDevices struct {
	tokens  []string
	deleted []string
}

func (f *fakeDevices) GetTokensByUserID(context.Context, string) ([]authdomain.DeviceToken, error) {
	var out []authdomain.DeviceToken
	for _, t := range f.tokens {
		out = append(out, authdomain.DeviceToken{Token: t})
	}
	return out, nil
}

func (f *fakeDevices) DeleteToken(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeProfiles struct {
	chatID int64
}

func (f *fakeProfiles) FindByUserID(_ context.Context, userID string) (*authdomain.Profile, error) {
	return &authdomain.Profile{UserID: userID, TelegramChatID: f.chatID}, nil
}

type fakeSettings struct {
	settings prefdomain.NotificationSettings
}

func (f *fakeSettings) NotificationSettings(context.Context, string) (prefdomain.NotificationSettings, error) {
	return f.settings, nil
}

type fakePush struct {
	SendToDevicesFunc func(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error)
}

func (f *fakePush) SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
	return f.SendToDevicesFunc(ctx, tokens, n)
}

type fakeChat struct {
	sent []int64
	err  error
}

func (f *fakeChat) Send(_ context.Context, chatID int64, _, _ string) error {
	f.sent = append(f.sent, chatID)
	return f.err
}

type fakeLive struct {
	users []string
}

func (f *fakeLive) SendToUser(userID string, _ realtime.Message) {
	f.users = append(f.users, userID)
}

func TestNotifyFansOutAndDropsFailedTokens(t *testing.T) {
	db := setupTestDB(t)
	devices := &fakeDevices{tokens: []string{"good", "stale"}}
	chat := &fakeChat{err: errors.New("bot blocked")}
	live := &fakeLive{}
	var pushed fcm.NotificationData
	push := &fakePush{SendToDevicesFunc: func(_ context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
		pushed = n
		return []string{"stale"}, nil
	}}

	svc := NewService(repository.NewNotificationRepository(db), devices, &fakeProfiles{chatID: 42},
		&fakeSettings{settings: prefdomain.DefaultNotificationSettings()},
		Channels{Push: push, Chat: chat, Live: live})

	err := svc.Notify(context.Background(), "u1", domain.Message{
		Title: "Due soon", Body: "Ship it", Tag: "task-t1-15min", Data: map[string]string{"task_id": "t1"},
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if pushed.Tag != "task-t1-15min" {
		t.Errorf("push tag = %q", pushed.Tag)
	}
	if len(devices.deleted) != 1 || devices.deleted[0] != "stale" {
		t.Errorf("deleted tokens = %v, want [stale]", devices.deleted)
	}
	if len(chat.sent) != 1 || chat.sent[0] != 42 {
		t.Errorf("telegram sends = %v", chat.sent)
	}
	if len(live.users) != 1 {
		t.Errorf("live sends = %v", live.users)
	}

	items, total, err := svc.List(context.Background(), "u1", false, 0, 0)
	if err != nil || total != 1 || items[0].Data["task_id"] != "t1" {
		t.Fatalf("List() = %v, %d, %v", items, total, err)
	}
}

func TestNotifyRespectsDisabledSettings(t *testing.T) {
	db := setupTestDB(t)
	push := &fakePush{SendToDevicesFunc: func(context.Context, []string, fcm.NotificationData) ([]string, error) {
		t.Error("push should not be used")
		return nil, nil
	}}
	svc := NewService(repository.NewNotificationRepository(db), &fakeDevices{tokens: []string{"a"}}, nil,
		&fakeSettings{settings: prefdomain.NotificationSettings{Enabled: false}}, Channels{Push: push})

	if err := svc.Notify(context.Background(), "u1", domain.Message{Title: "x"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if n, _ := svc.UnreadCount(context.Background(), "u1"); n != 0 {
		t.Errorf("unread = %d, want 0", n)
	}
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(repository.NewNotificationRepository(db), &fakeDevices{}, nil, nil, Channels{})
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if err := svc.Notify(ctx, "u1", domain.Message{Title: title}); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}
	items, _, _ := svc.List(ctx, "u1", true, 10, 0)
	if len(items) != 3 {
		t.Fatalf("unread items = %d", len(items))
	}

	if err := svc.MarkRead(ctx, "u1", items[0].ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if err := svc.MarkRead(ctx, "u2", items[1].ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MarkRead(other user) err = %v, want not found", err)
	}
	if n, _ := svc.UnreadCount(ctx, "u1"); n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}

	updated, err := svc.MarkAllRead(ctx, "u1")
	if err != nil || updated != 2 {
		t.Errorf("MarkAllRead() = %d, %v; want 2", updated, err)
	}
	if n, _ := svc.UnreadCount(ctx, "u1"); n != 0 {
		t.Errorf("unread = %d, want 0", n)
	}
}
