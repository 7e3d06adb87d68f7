package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrColumnNotEmpty = errors.New("column still has tasks")

// columnRepository implements ColumnRepository interface
type columnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &columnRepository{db: db}
}

func (r *columnRepository) Create(ctx context.Context, column *domain.Column) error {
	if column.ID == "" {
		column.ID = uuid.New().String()
	}
	column.CreatedAt = time.Now().UTC()
	column.UpdatedAt = column.CreatedAt
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *columnRepository) FindByID(ctx context.Context, id string) (*domain.Column, error) {
	var column domain.Column
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

// ListByBoard returns columns ordered by display order
func (r *columnRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error) {
	var columns []*domain.Column
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("display_order ASC, created_at ASC").
		Find(&columns).Error
	return columns, err
}

func (r *columnRepository) Update(ctx context.Context, column *domain.Column) error {
	column.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(column).Error
}

func (r *columnRepository) Delete(ctx context.Context, column *domain.Column, moveTo string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if moveTo != "" {
			if err := tx.Table("tasks").Where("column_id = ?", column.ID).
				Updates(map[string]interface{}{"column_id": moveTo, "updated_at": time.Now().UTC()}).Error; err != nil {
				return err
			}
		} else {
			var count int64
			if err := tx.Table("tasks").Where("column_id = ?", column.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrColumnNotEmpty
			}
		}
		return tx.Delete(&domain.Column{}, "id = ?", column.ID).Error
	})
}

// UpdatePositions updates display order for multiple columns in one transaction
func (r *columnRepository) UpdatePositions(ctx context.Context, boardID string, positions map[string]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for columnID, position := range positions {
			err := tx.Model(&domain.Column{}).
				Where("board_id = ? AND id = ?", boardID, columnID).
				Updates(map[string]interface{}{"display_order": position, "updated_at": time.Now().UTC()}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *columnRepository) NextPosition(ctx context.Context, boardID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&domain.Column{}).
		Where("board_id = ?", boardID).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
