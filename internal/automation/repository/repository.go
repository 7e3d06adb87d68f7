package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/automation/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *domain.AutomationRule) error
	FindByID(ctx context.Context, id string) (*domain.AutomationRule, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.AutomationRule, error)
	ListActiveByBoard(ctx context.Context, boardID string) ([]*domain.AutomationRule, error)
	Update(ctx context.Context, rule *domain.AutomationRule) error
	// SetActive writes only is_active, leaving the configuration untouched.
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *domain.AutomationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.CreatedAt = time.Now().UTC()
	rule.UpdatedAt = rule.CreatedAt
	// Select keeps an explicit is_active=false from falling back to the column default.
	return r.db.WithContext(ctx).Select("*").Create(rule).Error
}

func (r *ruleRepository) FindByID(ctx context.Context, id string) (*domain.AutomationRule, error) {
	var rule domain.AutomationRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.AutomationRule, error) {
	var rules []*domain.AutomationRule
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) ListActiveByBoard(ctx context.Context, boardID string) ([]*domain.AutomationRule, error) {
	var rules []*domain.AutomationRule
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND is_active = ?", boardID, true).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.AutomationRule) error {
	rule.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).Model(&domain.AutomationRule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()}).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.AutomationRule{}, "id = ?", id).Error
}
