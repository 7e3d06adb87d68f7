package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board, columns []*domain.Column, labels []*domain.Label) error {
	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		for i, col := range columns {
			col.ID = uuid.New().String()
			col.BoardID = board.ID
			col.Position = i
			col.CreatedAt = now
			col.UpdatedAt = now
		}
		if len(columns) > 0 {
			if err := tx.Create(&columns).Error; err != nil {
				return err
			}
		}
		for _, label := range labels {
			label.ID = uuid.New().String()
			label.BoardID = board.ID
			label.CreatedAt = now
		}
		if len(labels) > 0 {
			if err := tx.Create(&labels).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *boardRepository) FindByID(ctx context.Context, id string) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) FindVisible(ctx context.Context, userID string) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR project_id IN (?)", userID,
			r.db.Table("project_members").Select("project_id").Where("user_id = ?", userID)).
		Order("created_at ASC").
		Find(&boards).Error
	return boards, err
}

func (r *boardRepository) FindByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&boards).Error
	return boards, err
}

func (r *boardRepository) Update(ctx context.Context, board *domain.Board) error {
	board.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(board).Error
}

// taskChildTables are keyed by task_id and go away with their task.
var taskChildTables = []string{
	"task_tags", "subtasks", "task_labels", "task_assignees",
	"task_attachments", "starred_tasks", "custom_field_values",
}

func (r *boardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Table("tasks").Select("id").Where("board_id = ?", id)
		for _, table := range taskChildTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE task_id IN (?)", taskIDs).Error; err != nil {
				return err
			}
		}
		for _, table := range []string{"tasks", "automation_rules", "custom_fields", "labels", "columns"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE board_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Board{}, "id = ?", id).Error
	})
}
