package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/customfield/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomFieldRepository interface {
	Create(ctx context.Context, field *domain.CustomField) error
	FindByID(ctx context.Context, id string) (*domain.CustomField, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.CustomField, error)
	Update(ctx context.Context, field *domain.CustomField) error
	// Delete removes the field and every task value stored for it.
	Delete(ctx context.Context, id string) error
	ValuesForTask(ctx context.Context, taskID string) ([]*domain.CustomFieldValue, error)
}

type customFieldRepository struct {
	db *gorm.DB
}

func NewCustomFieldRepository(db *gorm.DB) CustomFieldRepository {
	return &customFieldRepository{db: db}
}

func (r *customFieldRepository) Create(ctx context.Context, field *domain.CustomField) error {
	if field.ID == "" {
		field.ID = uuid.New().String()
	}
	if field.Options == nil {
		field.Options = domain.StringArray{}
	}
	field.CreatedAt = time.Now().UTC()
	field.UpdatedAt = field.CreatedAt
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *customFieldRepository) FindByID(ctx context.Context, id string) (*domain.CustomField, error) {
	var field domain.CustomField
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&field).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}

func (r *customFieldRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.CustomField, error) {
	var fields []*domain.CustomField
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position ASC, created_at ASC").
		Find(&fields).Error
	return fields, err
}

func (r *customFieldRepository) Update(ctx context.Context, field *domain.CustomField) error {
	if field.Options == nil {
		field.Options = domain.StringArray{}
	}
	field.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(field).Error
}

func (r *customFieldRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("field_id = ?", id).Delete(&domain.CustomFieldValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.CustomField{}, "id = ?", id).Error
	})
}

func (r *customFieldRepository) ValuesForTask(ctx context.Context, taskID string) ([]*domain.CustomFieldValue, error) {
	var values []*domain.CustomFieldValue
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Find(&values).Error
	return values, err
}
