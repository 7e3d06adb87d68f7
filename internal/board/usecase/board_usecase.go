package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kanban-backend/internal/board/domain"
	"kanban-backend/internal/board/repository"
	"kanban-backend/internal/board/templates"
	"kanban-backend/internal/events"
	teamdomain "kanban-backend/internal/team/domain"
	"kanban-backend/pkg/apperror"
)

// MembershipChecker resolves a user's role in a project. The team usecase
// satisfies it.
type MembershipChecker interface {
	MemberRole(ctx context.Context, projectID, userID string) (teamdomain.Role, error)
}

type boardUsecase struct {
	boards    repository.BoardRepository
	columns   repository.ColumnRepository
	labels    repository.LabelRepository
	members   MembershipChecker
	events    events.Publisher
	templates map[string]*templates.Template
}

func NewBoardUsecase(boards repository.BoardRepository, columns repository.ColumnRepository, labels repository.LabelRepository, members MembershipChecker, publisher events.Publisher, tpls map[string]*templates.Template) BoardUsecase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &boardUsecase{
		boards:    boards,
		columns:   columns,
		labels:    labels,
		members:   members,
		events:    publisher,
		templates: tpls,
	}
}

func (u *boardUsecase) Authorize(ctx context.Context, userID, boardID string, write bool) (*domain.Board, error) {
	board, err := u.boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, apperror.NotFound("board not found")
	}
	if board.OwnerID == userID {
		return board, nil
	}
	if board.ProjectID == nil {
		return nil, apperror.NotFound("board not found")
	}

	role, err := u.members.MemberRole(ctx, *board.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, apperror.NotFound("board not found")
	}
	if write && !role.CanWrite() {
		return nil, apperror.Forbidden("viewers cannot change this board")
	}
	return board, nil
}

func (u *boardUsecase) CreateBoard(ctx context.Context, userID string, req CreateBoardRequest) (*domain.BoardDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("board name is required")
	}

	if req.ProjectID != nil && *req.ProjectID != "" {
		role, err := u.members.MemberRole(ctx, *req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		if !role.CanWrite() {
			return nil, apperror.Forbidden("you cannot add boards to this project")
		}
	} else {
		req.ProjectID = nil
	}

	tplName := req.Template
	if tplName == "" {
		tplName = templates.Default
	}
	tpl, ok := u.templates[tplName]
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown board template %q", tplName))
	}

	board := &domain.Board{
		OwnerID:     userID,
		ProjectID:   req.ProjectID,
		Name:        name,
		Description: req.Description,
		Background:  req.Background,
	}
	columns := make([]*domain.Column, 0, len(tpl.Columns))
	for _, c := range tpl.Columns {
		columns = append(columns, &domain.Column{Title: c.Title, Color: c.Color})
	}
	labels := make([]*domain.Label, 0, len(tpl.Labels))
	for _, l := range tpl.Labels {
		labels = append(labels, &domain.Label{Name: l.Name, Color: l.Color})
	}

	if err := u.boards.Create(ctx, board, columns, labels); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return &domain.BoardDetail{Board: board, Columns: columns, Labels: labels}, nil
}

func (u *boardUsecase) ListBoards(ctx context.Context, userID string) ([]*domain.Board, error) {
	boards, err := u.boards.FindVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []*domain.Board{}
	}
	return boards, nil
}

func (u *boardUsecase) GetBoard(ctx context.Context, userID, boardID string) (*domain.BoardDetail, error) {
	board, err := u.Authorize(ctx, userID, boardID, false)
	if err != nil {
		return nil, err
	}
	columns, err := u.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	labels, err := u.labels.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []*domain.Column{}
	}
	if labels == nil {
		labels = []*domain.Label{}
	}
	return &domain.BoardDetail{Board: board, Columns: columns, Labels: labels}, nil
}

func (u *boardUsecase) UpdateBoard(ctx context.Context, userID, boardID string, req UpdateBoardRequest) (*domain.Board, error) {
	board, err := u.Authorize(ctx, userID, boardID, true)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("board name cannot be empty")
		}
		board.Name = name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Background != nil {
		board.Background = *req.Background
	}

	if err := u.boards.Update(ctx, board); err != nil {
		return nil, err
	}
	u.events.Publish(ctx, events.Event{Type: events.BoardUpdated, BoardID: board.ID, ActorID: userID,
		Payload: map[string]interface{}{"board": board}})
	return board, nil
}

func (u *boardUsecase) DeleteBoard(ctx context.Context, userID, boardID string) error {
	board, err := u.Authorize(ctx, userID, boardID, true)
	if err != nil {
		return err
	}
	if board.OwnerID != userID {
		return apperror.Forbidden("only the board owner can delete it")
	}
	return u.boards.Delete(ctx, boardID)
}

func (u *boardUsecase) ListTemplates() []*templates.Template {
	return templates.Sorted(u.templates)
}

func (u *boardUsecase) CreateColumn(ctx context.Context, userID, boardID string, req ColumnRequest) (*domain.Column, error) {
	if _, err := u.Authorize(ctx, userID, boardID, true); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("column title is required")
	}

	position, err := u.columns.NextPosition(ctx, boardID)
	if err != nil {
		return nil, err
	}
	column := &domain.Column{BoardID: boardID, Title: title, Color: req.Color, Position: position}
	if err := u.columns.Create(ctx, column); err != nil {
		return nil, err
	}
	u.publishColumn(ctx, events.ColumnCreated, userID, column)
	return column, nil
}

// columnForWrite loads a column and checks write access to its board.
func (u *boardUsecase) columnForWrite(ctx context.Context, userID, columnID string) (*domain.Column, error) {
	column, err := u.columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, apperror.NotFound("column not found")
	}
	if _, err := u.Authorize(ctx, userID, column.BoardID, true); err != nil {
		return nil, err
	}
	return column, nil
}

func (u *boardUsecase) UpdateColumn(ctx context.Context, userID, columnID string, req ColumnRequest) (*domain.Column, error) {
	column, err := u.columnForWrite(ctx, userID, columnID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("column title is required")
	}
	column.Title = title
	column.Color = req.Color
	if err := u.columns.Update(ctx, column); err != nil {
		return nil, err
	}
	u.publishColumn(ctx, events.ColumnUpdated, userID, column)
	return column, nil
}

func (u *boardUsecase) DeleteColumn(ctx context.Context, userID, columnID, moveTo string) error {
	column, err := u.columnForWrite(ctx, userID, columnID)
	if err != nil {
		return err
	}

	if moveTo != "" {
		if moveTo == columnID {
			return apperror.Validation("cannot move tasks into the column being deleted")
		}
		target, err := u.columns.FindByID(ctx, moveTo)
		if err != nil {
			return err
		}
		if target == nil || target.BoardID != column.BoardID {
			return apperror.Validation("target column must belong to the same board")
		}
	}

	if err := u.columns.Delete(ctx, column, moveTo); err != nil {
		if errors.Is(err, repository.ErrColumnNotEmpty) {
			return apperror.Conflict("column still has tasks; move them first")
		}
		return err
	}
	u.publishColumn(ctx, events.ColumnDeleted, userID, column)
	return nil
}

func (u *boardUsecase) ReorderColumns(ctx context.Context, userID, boardID string, positions map[string]int) ([]*domain.Column, error) {
	if _, err := u.Authorize(ctx, userID, boardID, true); err != nil {
		return nil, err
	}

	existing, err := u.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.ID] = true
	}
	for id := range positions {
		if !known[id] {
			return nil, apperror.Validation(fmt.Sprintf("column %s does not belong to this board", id))
		}
	}

	if err := u.columns.UpdatePositions(ctx, boardID, positions); err != nil {
		return nil, err
	}
	columns, err := u.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, events.Event{Type: events.ColumnUpdated, BoardID: boardID, ActorID: userID,
		Payload: map[string]interface{}{"orders": positions}})
	return columns, nil
}

func (u *boardUsecase) publishColumn(ctx context.Context, typ events.Type, userID string, column *domain.Column) {
	u.events.Publish(ctx, events.Event{
		Type:    typ,
		BoardID: column.BoardID,
		ActorID: userID,
		Payload: map[string]interface{}{"column": column},
	})
}

func (u *boardUsecase) ListLabels(ctx context.Context, userID, boardID string) ([]*domain.Label, error) {
	if _, err := u.Authorize(ctx, userID, boardID, false); err != nil {
		return nil, err
	}
	labels, err := u.labels.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []*domain.Label{}
	}
	return labels, nil
}

func (u *boardUsecase) CreateLabel(ctx context.Context, userID, boardID string, req LabelRequest) (*domain.Label, error) {
	if _, err := u.Authorize(ctx, userID, boardID, true); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("label name is required")
	}
	label := &domain.Label{BoardID: boardID, Name: name, Color: req.Color}
	if err := u.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (u *boardUsecase) labelForWrite(ctx context.Context, userID, labelID string) (*domain.Label, error) {
	label, err := u.labels.FindByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, apperror.NotFound("label not found")
	}
	if _, err := u.Authorize(ctx, userID, label.BoardID, true); err != nil {
		return nil, err
	}
	return label, nil
}

func (u *boardUsecase) UpdateLabel(ctx context.Context, userID, labelID string, req LabelRequest) (*domain.Label, error) {
	label, err := u.labelForWrite(ctx, userID, labelID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("label name is required")
	}
	label.Name = name
	label.Color = req.Color
	if err := u.labels.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (u *boardUsecase) DeleteLabel(ctx context.Context, userID, labelID string) error {
	if _, err := u.labelForWrite(ctx, userID, labelID); err != nil {
		return err
	}
	return u.labels.Delete(ctx, labelID)
}
