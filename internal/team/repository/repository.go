package repository

import (
	"context"

	"kanban-backend/internal/team/domain"
)

type ProjectRepository interface {
	// Create stores the project and makes its owner an owner member.
	Create(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	// FindByMember lists projects the user belongs to.
	FindByMember(ctx context.Context, userID string) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	// Delete removes the project along with its members and invitations.
	Delete(ctx context.Context, id string) error
}

type MemberRepository interface {
	FindProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]*domain.ProjectMemberView, error)
	UpdateRole(ctx context.Context, projectID, userID string, role domain.Role) error
	RemoveProjectMember(ctx context.Context, projectID, userID string) error
	ListTeam(ctx context.Context, ownerID string) ([]*domain.TeamMember, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.TeamInvitation) error
	FindByID(ctx context.Context, id string) (*domain.TeamInvitation, error)
	FindByToken(ctx context.Context, token string) (*domain.TeamInvitation, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.TeamInvitation, error)
	// Accept marks the invitation accepted and adds the user to the project
	// and to the inviter's team in one transaction. It returns
	// ErrInvitationNotPending when another request changed the status first
	// and ErrAlreadyMember when the user already belongs to the project.
	Accept(ctx context.Context, inv *domain.TeamInvitation, userID string) error
	Decline(ctx context.Context, inv *domain.TeamInvitation) error
	Delete(ctx context.Context, id string) error
}
