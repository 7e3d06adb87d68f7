package repository

import (
	"context"
	"errors"

	"kanban-backend/internal/team/domain"

	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	var member domain.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ListProjectMembers(ctx context.Context, projectID string) ([]*domain.ProjectMemberView, error) {
	var members []*domain.ProjectMemberView
	err := r.db.WithContext(ctx).
		Table("project_members pm").
		Select("pm.user_id, u.email, u.name, u.avatar_url, pm.role, pm.created_at AS joined_at").
		Joins("JOIN users u ON u.id = pm.user_id").
		Where("pm.project_id = ?", projectID).
		Order("pm.created_at ASC").
		Scan(&members).Error
	return members, err
}

func (r *memberRepository) UpdateRole(ctx context.Context, projectID, userID string, role domain.Role) error {
	return r.db.WithContext(ctx).Model(&domain.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

func (r *memberRepository) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&domain.ProjectMember{}).Error
}

func (r *memberRepository) ListTeam(ctx context.Context, ownerID string) ([]*domain.TeamMember, error) {
	var members []*domain.TeamMember
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}
