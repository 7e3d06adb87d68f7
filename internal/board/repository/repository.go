package repository

import (
	"context"

	"kanban-backend/internal/board/domain"
)

type BoardRepository interface {
	// Create stores the board together with its initial columns and labels.
	Create(ctx context.Context, board *domain.Board, columns []*domain.Column, labels []*domain.Label) error
	FindByID(ctx context.Context, id string) (*domain.Board, error)
	// FindVisible lists boards the user owns or can reach through a project.
	FindVisible(ctx context.Context, userID string) ([]*domain.Board, error)
	// FindByProject lists the boards attached to a project.
	FindByProject(ctx context.Context, projectID string) ([]*domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	// Delete removes the board and everything that hangs off it.
	Delete(ctx context.Context, id string) error
}

type ColumnRepository interface {
	Create(ctx context.Context, column *domain.Column) error
	FindByID(ctx context.Context, id string) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error)
	Update(ctx context.Context, column *domain.Column) error
	// Delete removes the column. Its tasks move to moveTo when set; otherwise
	// a non-empty column is refused with ErrColumnNotEmpty.
	Delete(ctx context.Context, column *domain.Column, moveTo string) error
	// UpdatePositions sets display order for columns of one board.
	UpdatePositions(ctx context.Context, boardID string, positions map[string]int) error
	NextPosition(ctx context.Context, boardID string) (int, error)
}

type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	FindByID(ctx context.Context, id string) (*domain.Label, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.Label, error)
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id string) error
}
