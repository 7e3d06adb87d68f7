package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	authrepo "kanban-backend/internal/auth/repository"
	"kanban-backend/internal/team/domain"
	"kanban-backend/internal/team/repository"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/mailer"

	"github.com/google/uuid"
)

// InvitationSender delivers invitation e-mails. *mailer.Mailer satisfies it.
type InvitationSender interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) error
}

type teamUsecase struct {
	projects    repository.ProjectRepository
	members     repository.MemberRepository
	invitations repository.InvitationRepository
	users       authrepo.UserRepository
	mail        InvitationSender
	appURL      string
	now         func() time.Time
}

func NewTeamUsecase(projects repository.ProjectRepository, members repository.MemberRepository, invitations repository.InvitationRepository, users authrepo.UserRepository, mail InvitationSender, appURL string) TeamUsecase {
	return &teamUsecase{
		projects:    projects,
		members:     members,
		invitations: invitations,
		users:       users,
		mail:        mail,
		appURL:      appURL,
		now:         time.Now,
	}
}

func (u *teamUsecase) CreateProject(ctx context.Context, userID string, req ProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("project name is required")
	}
	project := &domain.Project{
		OwnerID:     userID,
		Name:        name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := u.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (u *teamUsecase) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	projects, err := u.projects.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return projects, nil
}

func (u *teamUsecase) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, _, err := u.projectForMember(ctx, userID, projectID)
	return project, err
}

func (u *teamUsecase) UpdateProject(ctx context.Context, userID, projectID string, req ProjectRequest) (*domain.Project, error) {
	project, role, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !role.CanManage() {
		return nil, apperror.Forbidden("only project owners and admins can edit the project")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		project.Name = name
	}
	project.Description = req.Description
	project.Color = req.Color

	if err := u.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (u *teamUsecase) DeleteProject(ctx context.Context, userID, projectID string) error {
	project, _, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return apperror.Forbidden("only the project owner can delete the project")
	}
	return u.projects.Delete(ctx, projectID)
}

// projectForMember loads the project and the caller's role, hiding projects the
// caller does not belong to behind a 404.
func (u *teamUsecase) projectForMember(ctx context.Context, userID, projectID string) (*domain.Project, domain.Role, error) {
	project, err := u.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if project == nil {
		return nil, "", apperror.NotFound("project not found")
	}
	role, err := u.MemberRole(ctx, projectID, userID)
	if err != nil {
		return nil, "", err
	}
	if role == "" {
		return nil, "", apperror.NotFound("project not found")
	}
	return project, role, nil
}

func (u *teamUsecase) MemberRole(ctx context.Context, projectID, userID string) (domain.Role, error) {
	member, err := u.members.FindProjectMember(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", nil
	}
	return member.Role, nil
}

func (u *teamUsecase) ListMembers(ctx context.Context, userID, projectID string) ([]*domain.ProjectMemberView, error) {
	if _, _, err := u.projectForMember(ctx, userID, projectID); err != nil {
		return nil, err
	}
	members, err := u.members.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*domain.ProjectMemberView{}
	}
	return members, nil
}

func (u *teamUsecase) UpdateMemberRole(ctx context.Context, userID, projectID, memberID string, role domain.Role) error {
	if !role.Valid() || role == domain.RoleOwner {
		return apperror.Validation("role must be admin, member or viewer")
	}
	project, callerRole, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !callerRole.CanManage() {
		return apperror.Forbidden("only project owners and admins can change roles")
	}
	if memberID == project.OwnerID {
		return apperror.Forbidden("the project owner's role cannot be changed")
	}
	target, err := u.members.FindProjectMember(ctx, projectID, memberID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperror.NotFound("member not found")
	}
	return u.members.UpdateRole(ctx, projectID, memberID, role)
}

func (u *teamUsecase) RemoveMember(ctx context.Context, userID, projectID, memberID string) error {
	project, callerRole, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if memberID == project.OwnerID {
		return apperror.Forbidden("the project owner cannot be removed")
	}
	// Anyone may leave; removing others needs a managing role.
	if memberID != userID && !callerRole.CanManage() {
		return apperror.Forbidden("only project owners and admins can remove members")
	}
	return u.members.RemoveProjectMember(ctx, projectID, memberID)
}

func (u *teamUsecase) Invite(ctx context.Context, userID, projectID string, req InviteRequest) (*domain.TeamInvitation, error) {
	project, callerRole, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !callerRole.CanManage() {
		return nil, apperror.Forbidden("only project owners and admins can invite")
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() || role == domain.RoleOwner {
		return nil, apperror.Validation("role must be admin, member or viewer")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperror.Validation("email is required")
	}
	if existing, err := u.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		role, err := u.MemberRole(ctx, projectID, existing.ID)
		if err != nil {
			return nil, err
		}
		if role != "" {
			return nil, apperror.Conflict(fmt.Sprintf("%s is already a member of this project", email))
		}
	}

	inv := &domain.TeamInvitation{
		ProjectID: projectID,
		InviterID: userID,
		Email:     email,
		Role:      role,
		Token:     uuid.New().String(),
		Status:    domain.InvitationPending,
		ExpiresAt: u.now().UTC().Add(domain.InvitationTTL),
	}
	if err := u.invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	u.sendInvitation(ctx, project, inv)
	return inv, nil
}

func (u *teamUsecase) sendInvitation(ctx context.Context, project *domain.Project, inv *domain.TeamInvitation) {
	if u.mail == nil || !u.mail.Enabled() {
		log.Printf("[Team] Mailer not configured, invitation %s for %s not e-mailed", inv.ID, inv.Email)
		return
	}

	link := fmt.Sprintf("%s/invite?token=%s", u.appURL, inv.Token)
	msg := mailer.Message{
		To:       []string{inv.Email},
		Subject:  fmt.Sprintf("You have been invited to %s", project.Name),
		TextBody: fmt.Sprintf("You have been invited to join %q as %s.\n\nAccept the invitation: %s\n\nThe link expires on %s.", project.Name, inv.Role, link, inv.ExpiresAt.Format("2 Jan 2006")),
		HTMLBody: fmt.Sprintf(`<p>You have been invited to join <strong>%s</strong> as %s.</p><p><a href="%s">Accept the invitation</a></p>`,
			html.EscapeString(project.Name), html.EscapeString(string(inv.Role)), html.EscapeString(link)),
	}
	if err := u.mail.Send(ctx, msg); err != nil {
		log.Printf("[Team] Failed to e-mail invitation %s: %v", inv.ID, err)
	}
}

func (u *teamUsecase) ListInvitations(ctx context.Context, userID, projectID string) ([]*domain.TeamInvitation, error) {
	_, callerRole, err := u.projectForMember(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !callerRole.CanManage() {
		return nil, apperror.Forbidden("only project owners and admins can view invitations")
	}
	invitations, err := u.invitations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if invitations == nil {
		invitations = []*domain.TeamInvitation{}
	}
	return invitations, nil
}

// invitationFor resolves the token and checks it was addressed to userID.
func (u *teamUsecase) invitationFor(ctx context.Context, userID, token string) (*domain.TeamInvitation, error) {
	if token == "" {
		return nil, apperror.Validation("invitation token is required")
	}
	inv, err := u.invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("invitation not found")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !strings.EqualFold(user.Email, inv.Email) {
		return nil, apperror.Forbidden("this invitation was sent to a different e-mail address")
	}

	if inv.Status != domain.InvitationPending {
		return nil, apperror.Conflict(fmt.Sprintf("invitation already %s", inv.Status))
	}
	return inv, nil
}

func (u *teamUsecase) AcceptInvitation(ctx context.Context, userID, token string) (*domain.TeamInvitation, error) {
	inv, err := u.invitationFor(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if inv.Expired(u.now()) {
		return nil, apperror.Conflict("invitation has expired")
	}

	if err := u.invitations.Accept(ctx, inv, userID); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) || errors.Is(err, repository.ErrAlreadyMember) {
			return nil, apperror.Conflict(err.Error())
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	log.Printf("[Team] User %s joined project %s as %s", userID, inv.ProjectID, inv.Role)
	return inv, nil
}

func (u *teamUsecase) DeclineInvitation(ctx context.Context, userID, token string) (*domain.TeamInvitation, error) {
	inv, err := u.invitationFor(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if err := u.invitations.Decline(ctx, inv); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			return nil, apperror.Conflict(err.Error())
		}
		return nil, fmt.Errorf("decline invitation: %w", err)
	}
	return inv, nil
}

func (u *teamUsecase) RevokeInvitation(ctx context.Context, userID, invitationID string) error {
	inv, err := u.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NotFound("invitation not found")
	}
	_, callerRole, err := u.projectForMember(ctx, userID, inv.ProjectID)
	if err != nil {
		return err
	}
	if !callerRole.CanManage() {
		return apperror.Forbidden("only project owners and admins can revoke invitations")
	}
	if inv.Status != domain.InvitationPending {
		return apperror.Conflict(fmt.Sprintf("invitation already %s", inv.Status))
	}
	return u.invitations.Delete(ctx, invitationID)
}

func (u *teamUsecase) ListTeam(ctx context.Context, userID string) ([]*domain.TeamMember, error) {
	members, err := u.members.ListTeam(ctx, userID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*domain.TeamMember{}
	}
	return members, nil
}
