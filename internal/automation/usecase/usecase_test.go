package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"kanban-backend/internal/automation/domain"
	"kanban-backend/internal/automation/repository"
	boarddomain "kanban-backend/internal/board/domain"
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
	if err := db.AutoMigrate(&domain.AutomationRule{}); err != nil {
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

// ownerOnly lets u1 do anything on b1 and u2 only read it.
func ownerOnly() *fakeAuthorizer {
	return &fakeAuthorizer{AuthorizeFunc: func(_ context.Context, userID, boardID string, write bool) (*boarddomain.Board, error) {
		if boardID != "b1" {
			return nil, apperror.NotFound("board not found")
		}
		if userID == "u2" && write {
			return nil, apperror.Forbidden("viewers cannot change this board")
		}
		return &boarddomain.Board{ID: "b1", OwnerID: "u1"}, nil
	}}
}

func moveRule() RuleRequest {
	return RuleRequest{
		Name:          "Escalate",
		TriggerType:   domain.TriggerTaskMoved,
		TriggerConfig: map[string]interface{}{domain.KeyToColumnID: "review"},
		ActionType:    domain.ActionSetPriority,
		ActionConfig:  map[string]interface{}{domain.KeyPriority: "high"},
	}
}

func TestSetActiveRoundTripKeepsConfig(t *testing.T) {
	uc := NewAutomationUsecase(repository.NewRuleRepository(setupTestDB(t)), ownerOnly())
	ctx := context.Background()

	rule, err := uc.Create(ctx, "u1", "b1", moveRule())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !rule.IsActive {
		t.Fatal("new rule should be active")
	}

	off, err := uc.SetActive(ctx, "u1", rule.ID, false)
	if err != nil || off.IsActive {
		t.Fatalf("SetActive(false) = %+v, %v", off, err)
	}
	on, err := uc.SetActive(ctx, "u1", rule.ID, true)
	if err != nil || !on.IsActive {
		t.Fatalf("SetActive(true) = %+v, %v", on, err)
	}

	if !reflect.DeepEqual(map[string]interface{}(on.TriggerConfig), map[string]interface{}(rule.TriggerConfig)) {
		t.Errorf("trigger config = %v, want %v", on.TriggerConfig, rule.TriggerConfig)
	}
	if !reflect.DeepEqual(map[string]interface{}(on.ActionConfig), map[string]interface{}(rule.ActionConfig)) {
		t.Errorf("action config = %v, want %v", on.ActionConfig, rule.ActionConfig)
	}
	if on.TriggerType != rule.TriggerType || on.ActionType != rule.ActionType || on.Name != rule.Name {
		t.Errorf("rule changed: %+v", on)
	}
}

func TestCreateInactiveRule(t *testing.T) {
	uc := NewAutomationUsecase(repository.NewRuleRepository(setupTestDB(t)), ownerOnly())
	off := false
	req := moveRule()
	req.IsActive = &off

	rule, err := uc.Create(context.Background(), "u1", "b1", req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rules, _ := uc.List(context.Background(), "u1", "b1")
	if len(rules) != 1 || rules[0].IsActive || rule.IsActive {
		t.Errorf("stored rule should be inactive: %+v", rules)
	}
}

func TestCreateValidatesConfig(t *testing.T) {
	uc := NewAutomationUsecase(repository.NewRuleRepository(setupTestDB(t)), ownerOnly())
	req := moveRule()
	req.ActionConfig = map[string]interface{}{}

	if _, err := uc.Create(context.Background(), "u1", "b1", req); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestViewerCannotChangeRules(t *testing.T) {
	uc := NewAutomationUsecase(repository.NewRuleRepository(setupTestDB(t)), ownerOnly())
	ctx := context.Background()

	rule, _ := uc.Create(ctx, "u1", "b1", moveRule())
	if _, err := uc.SetActive(ctx, "u2", rule.ID, false); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("SetActive() err = %v, want forbidden", err)
	}
	if rules, err := uc.List(ctx, "u2", "b1"); err != nil || len(rules) != 1 {
		t.Errorf("viewer List() = %d, %v", len(rules), err)
	}
	if err := uc.Delete(ctx, "u1", rule.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := uc.Delete(ctx, "u1", rule.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() err = %v, want not found", err)
	}
}
