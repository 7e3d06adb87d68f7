package usecase

import (
	"context"
	"fmt"
	"strings"

	boarddomain "kanban-backend/internal/board/domain"
	"kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/customfield/repository"
	"kanban-backend/pkg/apperror"
)

// BoardAuthorizer is satisfied by the board usecase.
type BoardAuthorizer interface {
	Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
}

type CustomFieldUsecase interface {
	List(ctx context.Context, userID, boardID string) ([]*domain.CustomField, error)
	Create(ctx context.Context, userID, boardID string, req FieldRequest) (*domain.CustomField, error)
	Update(ctx context.Context, userID, fieldID string, req FieldRequest) (*domain.CustomField, error)
	Delete(ctx context.Context, userID, fieldID string) error
}

type FieldRequest struct {
	Name     string           `json:"name" binding:"required"`
	Type     domain.FieldType `json:"type" binding:"required"`
	Options  []string         `json:"options"`
	Required bool             `json:"required"`
	Position *int             `json:"position"`
}

type customFieldUsecase struct {
	fields repository.CustomFieldRepository
	boards BoardAuthorizer
}

func NewCustomFieldUsecase(fields repository.CustomFieldRepository, boards BoardAuthorizer) CustomFieldUsecase {
	return &customFieldUsecase{fields: fields, boards: boards}
}

func (u *customFieldUsecase) List(ctx context.Context, userID, boardID string) ([]*domain.CustomField, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, false); err != nil {
		return nil, err
	}
	fields, err := u.fields.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []*domain.CustomField{}
	}
	return fields, nil
}

func validateRequest(req *FieldRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperror.Validation("field name is required")
	}
	if !req.Type.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown field type %q", req.Type))
	}

	cleaned := make([]string, 0, len(req.Options))
	seen := map[string]bool{}
	for _, opt := range req.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		cleaned = append(cleaned, opt)
	}
	if req.Type.HasOptions() && len(cleaned) == 0 {
		return apperror.Validation("select fields need at least one option")
	}
	if !req.Type.HasOptions() {
		cleaned = []string{}
	}
	req.Options = cleaned
	return nil
}

func (u *customFieldUsecase) Create(ctx context.Context, userID, boardID string, req FieldRequest) (*domain.CustomField, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, true); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := u.fields.ListByBoard(ctx, boardID)
		if err != nil {
			return nil, err
		}
		position = len(existing)
	}

	field := &domain.CustomField{
		BoardID:  boardID,
		Name:     req.Name,
		Type:     req.Type,
		Options:  domain.StringArray(req.Options),
		Required: req.Required,
		Position: position,
	}
	if err := u.fields.Create(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (u *customFieldUsecase) fieldForWrite(ctx context.Context, userID, fieldID string) (*domain.CustomField, error) {
	field, err := u.fields.FindByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, apperror.NotFound("custom field not found")
	}
	if _, err := u.boards.Authorize(ctx, userID, field.BoardID, true); err != nil {
		return nil, err
	}
	return field, nil
}

func (u *customFieldUsecase) Update(ctx context.Context, userID, fieldID string, req FieldRequest) (*domain.CustomField, error) {
	field, err := u.fieldForWrite(ctx, userID, fieldID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	// Stored values are canonical for the old type.
	if req.Type != field.Type {
		return nil, apperror.Validation("a field's type cannot be changed; create a new field instead")
	}

	field.Name = req.Name
	field.Options = domain.StringArray(req.Options)
	field.Required = req.Required
	if req.Position != nil {
		field.Position = *req.Position
	}
	if err := u.fields.Update(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (u *customFieldUsecase) Delete(ctx context.Context, userID, fieldID string) error {
	if _, err := u.fieldForWrite(ctx, userID, fieldID); err != nil {
		return err
	}
	return u.fields.Delete(ctx, fieldID)
}
