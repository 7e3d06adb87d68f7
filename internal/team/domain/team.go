package domain

import "time"

// Role is a member's permission level inside a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may change boards and tasks.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// CanManage reports whether the role may invite, remove and re-role members.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type Project struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectMember struct {
	ProjectID string    `json:"project_id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"primaryKey;index"`
	Role      Role      `json:"role" gorm:"not null;default:member"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}

// TeamMember records that MemberID joined one of OwnerID's projects. It backs
// the "my team" list, which spans projects.
type TeamMember struct {
	OwnerID   string    `json:"owner_id" gorm:"primaryKey"`
	MemberID  string    `json:"member_id" gorm:"primaryKey"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// InvitationTTL is how long an invitation link stays valid.
const InvitationTTL = 7 * 24 * time.Hour

type TeamInvitation struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	ProjectID string           `json:"project_id" gorm:"index;not null"`
	InviterID string           `json:"inviter_id" gorm:"not null"`
	Email     string           `json:"email" gorm:"index;not null"`
	Role      Role             `json:"role" gorm:"not null"`
	Token     string           `json:"-" gorm:"uniqueIndex;not null"`
	Status    InvitationStatus `json:"status" gorm:"not null;default:pending"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (TeamInvitation) TableName() string {
	return "team_invitations"
}

func (i *TeamInvitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// ProjectMemberView is a member joined with the account fields the UI shows.
type ProjectMemberView struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
