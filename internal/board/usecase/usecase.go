package usecase

import (
	"context"

	"kanban-backend/internal/board/domain"
	"kanban-backend/internal/board/templates"
)

// BoardUsecase manages boards, their columns and labels, and decides who may
// read or change them.
type BoardUsecase interface {
	CreateBoard(ctx context.Context, userID string, req CreateBoardRequest) (*domain.BoardDetail, error)
	ListBoards(ctx context.Context, userID string) ([]*domain.Board, error)
	GetBoard(ctx context.Context, userID, boardID string) (*domain.BoardDetail, error)
	UpdateBoard(ctx context.Context, userID, boardID string, req UpdateBoardRequest) (*domain.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID string) error
	ListTemplates() []*templates.Template

	CreateColumn(ctx context.Context, userID, boardID string, req ColumnRequest) (*domain.Column, error)
	UpdateColumn(ctx context.Context, userID, columnID string, req ColumnRequest) (*domain.Column, error)
	DeleteColumn(ctx context.Context, userID, columnID, moveTo string) error
	ReorderColumns(ctx context.Context, userID, boardID string, positions map[string]int) ([]*domain.Column, error)

	ListLabels(ctx context.Context, userID, boardID string) ([]*domain.Label, error)
	CreateLabel(ctx context.Context, userID, boardID string, req LabelRequest) (*domain.Label, error)
	UpdateLabel(ctx context.Context, userID, labelID string, req LabelRequest) (*domain.Label, error)
	DeleteLabel(ctx context.Context, userID, labelID string) error

	// Authorize returns the board when userID may read it, or change it when
	// write is set.
	Authorize(ctx context.Context, userID, boardID string, write bool) (*domain.Board, error)
}

type CreateBoardRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ProjectID   *string `json:"project_id"`
	Template    string  `json:"template"`
	Background  string  `json:"background"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Background  *string `json:"background"`
}

type ColumnRequest struct {
	Title string `json:"title" binding:"required"`
	Color string `json:"color"`
}

type LabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type ReorderRequest struct {
	Orders map[string]int `json:"orders" binding:"required"`
}
