package usecase

import (
	"context"
	"errors"
	"testing"

	boarddomain "kanban-backend/internal/board/domain"
	"kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/customfield/repository"
	"kanban-backend/pkg/apperror"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.CustomField{}, &domain.CustomFieldValue{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

type fakeAuthorizer struct {
	AuthorizeFunc func(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error) {
	return f.AuthorizeFunc(ctx, userID, boardID, write)
}

func allowAll() *fakeAuthorizer {
	return &fakeAuthorizer{AuthorizeFunc: func(_ context.Context, _, boardID string, _ bool) (*boarddomain.Board, error) {
		return &boarddomain.Board{ID: boardID}, nil
	}}
}

func TestCreateSelectNeedsOptions(t *testing.T) {
	uc := NewCustomFieldUsecase(repository.NewCustomFieldRepository(setupTestDB(t)), allowAll())

	_, err := uc.Create(context.Background(), "u1", "b1", FieldRequest{Name: "Stage", Type: domain.FieldSelect})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}

	field, err := uc.Create(context.Background(), "u1", "b1", FieldRequest{Name: "Stage", Type: domain.FieldSelect, Options: []string{"alpha", " alpha ", "beta", ""}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(field.Options) != 2 {
		t.Errorf("options = %v, want deduplicated [alpha beta]", field.Options)
	}
}

func TestUpdateRejectsTypeChange(t *testing.T) {
	uc := NewCustomFieldUsecase(repository.NewCustomFieldRepository(setupTestDB(t)), allowAll())
	ctx := context.Background()

	field, err := uc.Create(ctx, "u1", "b1", FieldRequest{Name: "Points", Type: domain.FieldNumber})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = uc.Update(ctx, "u1", field.ID, FieldRequest{Name: "Points", Type: domain.FieldText})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestListRespectsBoardAccess(t *testing.T) {
	denied := &fakeAuthorizer{AuthorizeFunc: func(context.Context, string, string, bool) (*boarddomain.Board, error) {
		return nil, apperror.NotFound("board not found")
	}}
	uc := NewCustomFieldUsecase(repository.NewCustomFieldRepository(setupTestDB(t)), denied)

	if _, err := uc.List(context.Background(), "u1", "b1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}
