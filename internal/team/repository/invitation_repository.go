package repository

import (
	"context"
	"errors"
	"time"

	"kanban-backend/internal/team/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrAlreadyMember        = errors.New("user is already a member of this project")
)

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.TeamInvitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invitationRepository) FindByID(ctx context.Context, id string) (*domain.TeamInvitation, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*domain.TeamInvitation, error) {
	return r.findOne(ctx, "token = ?", token)
}

func (r *invitationRepository) findOne(ctx context.Context, query string, arg string) (*domain.TeamInvitation, error) {
	var inv domain.TeamInvitation
	err := r.db.WithContext(ctx).Where(query, arg).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.TeamInvitation, error) {
	var invitations []*domain.TeamInvitation
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (r *invitationRepository) Accept(ctx context.Context, inv *domain.TeamInvitation, userID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, inv, domain.InvitationAccepted, now); err != nil {
			return err
		}

		// Roles of existing members are changed through UpdateRole only.
		var existing int64
		if err := tx.Model(&domain.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", inv.ProjectID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		member := &domain.ProjectMember{ProjectID: inv.ProjectID, UserID: userID, Role: inv.Role, CreatedAt: now}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		teamMember := &domain.TeamMember{OwnerID: inv.InviterID, MemberID: userID, Role: inv.Role, CreatedAt: now}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(teamMember).Error
	})
}

func (r *invitationRepository) Decline(ctx context.Context, inv *domain.TeamInvitation) error {
	return transition(r.db.WithContext(ctx), inv, domain.InvitationDeclined, time.Now().UTC())
}

// transition moves a pending invitation to status. The status guard lives in
// the WHERE clause so two concurrent answers cannot both succeed.
func transition(db *gorm.DB, inv *domain.TeamInvitation, status domain.InvitationStatus, now time.Time) error {
	res := db.Model(&domain.TeamInvitation{}).
		Where("id = ? AND status = ?", inv.ID, domain.InvitationPending).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvitationNotPending
	}
	inv.Status = status
	inv.UpdatedAt = now
	return nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.TeamInvitation{}, "id = ?", id).Error
}
