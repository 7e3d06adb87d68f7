package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"kanban-backend/internal/preference/domain"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/kvstore"
)

const maxValueSize = 64 << 10

// PreferenceUsecase stores per-user feature state as raw JSON documents.
type PreferenceUsecase interface {
	Get(ctx context.Context, userID string, key domain.Key) (json.RawMessage, error)
	Put(ctx context.Context, userID string, key domain.Key, value json.RawMessage) error
	Delete(ctx context.Context, userID string, key domain.Key) error
	// All returns every stored key for the user.
	All(ctx context.Context, userID string) (map[domain.Key]json.RawMessage, error)

	NotificationSettings(ctx context.Context, userID string) (domain.NotificationSettings, error)
	DigestSettings(ctx context.Context, userID string) (domain.DigestSettings, error)
}

type preferenceUsecase struct {
	store kvstore.Store
}

func NewPreferenceUsecase(store kvstore.Store) PreferenceUsecase {
	return &preferenceUsecase{store: store}
}

func storeKey(userID string, key domain.Key) string {
	return fmt.Sprintf("pref:%s:%s", userID, key)
}

func checkKey(key domain.Key) error {
	if !key.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown preference key %q", key))
	}
	return nil
}

func (u *preferenceUsecase) Get(ctx context.Context, userID string, key domain.Key) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	raw, ok, err := u.store.Get(ctx, storeKey(userID, key))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("preference not set")
	}
	return json.RawMessage(raw), nil
}

func (u *preferenceUsecase) Put(ctx context.Context, userID string, key domain.Key, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(value) > maxValueSize {
		return apperror.Validation("preference value is too large")
	}
	if !json.Valid(value) {
		return apperror.Validation("preference value must be valid JSON")
	}

	switch key {
	case domain.KeyNotificationSettings:
		var s domain.NotificationSettings
		if err := json.Unmarshal(value, &s); err != nil {
			return apperror.Validation("invalid notification settings: " + err.Error())
		}
	case domain.KeyEmailDigest:
		var s domain.DigestSettings
		if err := json.Unmarshal(value, &s); err != nil {
			return apperror.Validation("invalid digest settings: " + err.Error())
		}
	}
	return u.store.Set(ctx, storeKey(userID, key), value, 0)
}

func (u *preferenceUsecase) Delete(ctx context.Context, userID string, key domain.Key) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return u.store.Delete(ctx, storeKey(userID, key))
}

func (u *preferenceUsecase) All(ctx context.Context, userID string) (map[domain.Key]json.RawMessage, error) {
	out := make(map[domain.Key]json.RawMessage)
	for _, key := range domain.AllKeys() {
		raw, ok, err := u.store.Get(ctx, storeKey(userID, key))
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = json.RawMessage(raw)
		}
	}
	return out, nil
}

func (u *preferenceUsecase) NotificationSettings(ctx context.Context, userID string) (domain.NotificationSettings, error) {
	settings := domain.DefaultNotificationSettings()
	err := u.decode(ctx, userID, domain.KeyNotificationSettings, &settings)
	return settings, err
}

func (u *preferenceUsecase) DigestSettings(ctx context.Context, userID string) (domain.DigestSettings, error) {
	settings := domain.DefaultDigestSettings()
	err := u.decode(ctx, userID, domain.KeyEmailDigest, &settings)
	return settings, err
}

// decode fills dst from the stored document, leaving defaults in place for
// fields the document omits.
func (u *preferenceUsecase) decode(ctx context.Context, userID string, key domain.Key, dst interface{}) error {
	raw, ok, err := u.store.Get(ctx, storeKey(userID, key))
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s for user %s: %w", key, userID, err)
	}
	return nil
}
