package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"kanban-backend/internal/preference/domain"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/kvstore"
)

func TestUnknownKeyRejected(t *testing.T) {
	uc := NewPreferenceUsecase(kvstore.NewMemoryStore())

	err := uc.Put(context.Background(), "u1", domain.Key("theme_hack"), json.RawMessage(`"dark"`))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Put() err = %v, want validation", err)
	}
	if _, err := uc.Get(context.Background(), "u1", domain.Key("nope")); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Get() err = %v, want validation", err)
	}
}

func TestPutGetDeleteRoundTrip(t *testing.T) {
	uc := NewPreferenceUsecase(kvstore.NewMemoryStore())
	ctx := context.Background()

	if err := uc.Put(ctx, "u1", domain.KeyQuickNotes, json.RawMessage(`["buy milk"]`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := uc.Get(ctx, "u1", domain.KeyQuickNotes)
	if err != nil || string(got) != `["buy milk"]` {
		t.Fatalf("Get() = %s, %v", got, err)
	}
	if _, err := uc.Get(ctx, "u2", domain.KeyQuickNotes); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("other user's Get() err = %v, want not found", err)
	}

	all, _ := uc.All(ctx, "u1")
	if len(all) != 1 {
		t.Errorf("All() = %d keys, want 1", len(all))
	}

	if err := uc.Delete(ctx, "u1", domain.KeyQuickNotes); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := uc.Get(ctx, "u1", domain.KeyQuickNotes); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete err = %v", err)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	uc := NewPreferenceUsecase(kvstore.NewMemoryStore())

	err := uc.Put(context.Background(), "u1", domain.KeyPomodoro, json.RawMessage(`{broken`))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
	err = uc.Put(context.Background(), "u1", domain.KeyNotificationSettings, json.RawMessage(`{"enabled":"yes"}`))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("typed settings err = %v, want validation", err)
	}
}

func TestNotificationSettingsDefaultsAndOverrides(t *testing.T) {
	uc := NewPreferenceUsecase(kvstore.NewMemoryStore())
	ctx := context.Background()

	s, err := uc.NotificationSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("NotificationSettings() error = %v", err)
	}
	if !s.Enabled || !s.BucketEnabled("1day") {
		t.Errorf("defaults = %+v, want enabled", s)
	}

	_ = uc.Put(ctx, "u1", domain.KeyNotificationSettings, json.RawMessage(`{"enabled":true,"buckets":{"1day":false}}`))
	s, _ = uc.NotificationSettings(ctx, "u1")
	if s.BucketEnabled("1day") {
		t.Error("1day bucket should be off")
	}
	if !s.BucketEnabled("overdue") {
		t.Error("unlisted bucket should stay on")
	}

	d, _ := uc.DigestSettings(ctx, "u1")
	if d.Enabled || !d.IncludeOverdue {
		t.Errorf("digest defaults = %+v", d)
	}
}
