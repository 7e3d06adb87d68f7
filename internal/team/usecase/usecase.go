package usecase

import (
	"context"

	"kanban-backend/internal/team/domain"
)

// TeamUsecase covers projects, their members and invitations.
type TeamUsecase interface {
	CreateProject(ctx context.Context, userID string, req ProjectRequest) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*domain.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error)
	UpdateProject(ctx context.Context, userID, projectID string, req ProjectRequest) (*domain.Project, error)
	DeleteProject(ctx context.Context, userID, projectID string) error

	ListMembers(ctx context.Context, userID, projectID string) ([]*domain.ProjectMemberView, error)
	UpdateMemberRole(ctx context.Context, userID, projectID, memberID string, role domain.Role) error
	RemoveMember(ctx context.Context, userID, projectID, memberID string) error
	// MemberRole returns the user's role in the project, or "" when not a member.
	MemberRole(ctx context.Context, projectID, userID string) (domain.Role, error)

	Invite(ctx context.Context, userID, projectID string, req InviteRequest) (*domain.TeamInvitation, error)
	ListInvitations(ctx context.Context, userID, projectID string) ([]*domain.TeamInvitation, error)
	AcceptInvitation(ctx context.Context, userID, token string) (*domain.TeamInvitation, error)
	DeclineInvitation(ctx context.Context, userID, token string) (*domain.TeamInvitation, error)
	RevokeInvitation(ctx context.Context, userID, invitationID string) error

	ListTeam(ctx context.Context, userID string) ([]*domain.TeamMember, error)
}

type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type InviteRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  domain.Role `json:"role"`
}

type RoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}
