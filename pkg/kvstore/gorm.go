package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is a row of the user_settings table.
type Setting struct {
	Key       string     `gorm:"column:setting_key;primaryKey;size:255"`
	Value     string     `gorm:"type:text"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Setting) TableName() string {
	return "user_settings"
}

// GormStore persists entries in the user_settings table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where("setting_key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if row.ExpiresAt != nil && !s.now().Before(*row.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return []byte(row.Value), true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	row := newSetting(key, value, ttl, s.now().UTC())
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(row).Error
}

func (s *GormStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	// Expired rows would otherwise block the insert below.
	if err := s.db.WithContext(ctx).
		Where("setting_key = ? AND expires_at IS NOT NULL AND expires_at <= ?", key, s.now().UTC()).
		Delete(&Setting{}).Error; err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(newSetting(key, value, ttl, s.now().UTC()))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("setting_key = ?", key).Delete(&Setting{}).Error
}

// Purge removes expired rows. Keys that are never read again, such as
// reminder markers, are otherwise kept forever.
func (s *GormStore) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&Setting{})
	return res.RowsAffected, res.Error
}

func newSetting(key string, value []byte, ttl time.Duration, now time.Time) *Setting {
	row := &Setting{Key: key, Value: string(value), UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		row.ExpiresAt = &exp
	}
	return row
}
