package usecase

import (
	"context"
	"strings"

	"kanban-backend/internal/automation/domain"
	"kanban-backend/internal/automation/repository"
	boarddomain "kanban-backend/internal/board/domain"
	"kanban-backend/pkg/apperror"

	"gorm.io/datatypes"
)

// BoardAuthorizer is satisfied by the board usecase.
type BoardAuthorizer interface {
	Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
}

type AutomationUsecase interface {
	List(ctx context.Context, userID, boardID string) ([]*domain.AutomationRule, error)
	Create(ctx context.Context, userID, boardID string, req RuleRequest) (*domain.AutomationRule, error)
	Update(ctx context.Context, userID, ruleID string, req RuleRequest) (*domain.AutomationRule, error)
	SetActive(ctx context.Context, userID, ruleID string, active bool) (*domain.AutomationRule, error)
	Delete(ctx context.Context, userID, ruleID string) error
}

type RuleRequest struct {
	Name          string                 `json:"name" binding:"required"`
	TriggerType   domain.TriggerType     `json:"trigger_type" binding:"required"`
	TriggerConfig map[string]interface{} `json:"trigger_config"`
	ActionType    domain.ActionType      `json:"action_type" binding:"required"`
	ActionConfig  map[string]interface{} `json:"action_config"`
	IsActive      *bool                  `json:"is_active"`
}

type ActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type automationUsecase struct {
	rules  repository.RuleRepository
	boards BoardAuthorizer
}

func NewAutomationUsecase(rules repository.RuleRepository, boards BoardAuthorizer) AutomationUsecase {
	return &automationUsecase{rules: rules, boards: boards}
}

func (u *automationUsecase) List(ctx context.Context, userID, boardID string) ([]*domain.AutomationRule, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, false); err != nil {
		return nil, err
	}
	return u.rules.ListByBoard(ctx, boardID)
}

func apply(rule *domain.AutomationRule, req RuleRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperror.Validation("rule name is required")
	}
	rule.Name = name
	rule.TriggerType = req.TriggerType
	rule.TriggerConfig = datatypes.JSONMap(req.TriggerConfig)
	rule.ActionType = req.ActionType
	rule.ActionConfig = datatypes.JSONMap(req.ActionConfig)
	if rule.TriggerConfig == nil {
		rule.TriggerConfig = datatypes.JSONMap{}
	}
	if rule.ActionConfig == nil {
		rule.ActionConfig = datatypes.JSONMap{}
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := rule.Validate(); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func (u *automationUsecase) Create(ctx context.Context, userID, boardID string, req RuleRequest) (*domain.AutomationRule, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, true); err != nil {
		return nil, err
	}

	rule := &domain.AutomationRule{BoardID: boardID, CreatedBy: userID, IsActive: true}
	if err := apply(rule, req); err != nil {
		return nil, err
	}
	if err := u.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *automationUsecase) ruleForWrite(ctx context.Context, userID, ruleID string) (*domain.AutomationRule, error) {
	rule, err := u.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apperror.NotFound("automation rule not found")
	}
	if _, err := u.boards.Authorize(ctx, userID, rule.BoardID, true); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *automationUsecase) Update(ctx context.Context, userID, ruleID string, req RuleRequest) (*domain.AutomationRule, error) {
	rule, err := u.ruleForWrite(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := apply(rule, req); err != nil {
		return nil, err
	}
	if err := u.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *automationUsecase) SetActive(ctx context.Context, userID, ruleID string, active bool) (*domain.AutomationRule, error) {
	if _, err := u.ruleForWrite(ctx, userID, ruleID); err != nil {
		return nil, err
	}
	if err := u.rules.SetActive(ctx, ruleID, active); err != nil {
		return nil, err
	}
	return u.rules.FindByID(ctx, ruleID)
}

func (u *automationUsecase) Delete(ctx context.Context, userID, ruleID string) error {
	if _, err := u.ruleForWrite(ctx, userID, ruleID); err != nil {
		return err
	}
	return u.rules.Delete(ctx, ruleID)
}
