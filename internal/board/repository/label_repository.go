package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type labelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

func (r *labelRepository) Create(ctx context.Context, label *domain.Label) error {
	if label.ID == "" {
		label.ID = uuid.New().String()
	}
	label.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *labelRepository) FindByID(ctx context.Context, id string) (*domain.Label, error) {
	var label domain.Label
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &label, nil
}

func (r *labelRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.Label, error) {
	var labels []*domain.Label
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("name ASC").Find(&labels).Error
	return labels, err
}

func (r *labelRepository) Update(ctx context.Context, label *domain.Label) error {
	return r.db.WithContext(ctx).Save(label).Error
}

func (r *labelRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Label{}, "id = ?", id).Error
	})
}
