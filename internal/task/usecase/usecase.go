package usecase

import (
	"context"
	"time"

	boarddomain "kanban-backend/internal/board/domain"
	customfielddomain "kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/task/domain"
	teamdomain "kanban-backend/internal/team/domain"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// SaveTask creates the task when form.ID is empty, otherwise updates it.
	// Every write of the save happens in one transaction.
	SaveTask(ctx context.Context, userID string, form TaskForm) (*domain.Task, error)

	// GetTask retrieves a task the user can see
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// ListBoardTasks returns the board's tasks ordered by column and position
	ListBoardTasks(ctx context.Context, userID, boardID string) ([]*domain.Task, error)

	// MoveTask puts the task into a column at a position
	MoveTask(ctx context.Context, userID, taskID string, req MoveRequest) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(ctx context.Context, userID, taskID string) error

	ToggleStar(ctx context.Context, userID, taskID string) (bool, error)
	ListStarred(ctx context.Context, userID string) ([]*domain.Task, error)

	// Search ranks tasks on every board the user can see by fuzzy match
	Search(ctx context.Context, userID, query string, limit int) ([]*domain.Task, error)

	ToggleSubtask(ctx context.Context, userID, subtaskID string) (*domain.Subtask, error)
}

// BoardAccess is satisfied by the board usecase.
type BoardAccess interface {
	Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
	ListBoards(ctx context.Context, userID string) ([]*boarddomain.Board, error)
}

// ColumnReader is satisfied by the board column repository.
type ColumnReader interface {
	FindByID(ctx context.Context, id string) (*boarddomain.Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]*boarddomain.Column, error)
}

// LabelReader is satisfied by the board label repository.
type LabelReader interface {
	ListByBoard(ctx context.Context, boardID string) ([]*boarddomain.Label, error)
}

// FieldReader is satisfied by the custom field repository.
type FieldReader interface {
	ListByBoard(ctx context.Context, boardID string) ([]*customfielddomain.CustomField, error)
}

// MembershipChecker is satisfied by the team usecase.
type MembershipChecker interface {
	MemberRole(ctx context.Context, projectID, userID string) (teamdomain.Role, error)
}

// TaskForm is the state of the create/edit dialog. Scalar fields always
// replace what is stored. A nil collection leaves the stored one untouched
// on update and means empty on create.
type TaskForm struct {
	ID          string          `json:"-"`
	BoardID     string          `json:"board_id"`
	ColumnID    string          `json:"column_id"`
	ProjectID   *string         `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
	ReminderAt  *time.Time      `json:"reminder_at"`
	CoverImage  string          `json:"cover_image"`

	Tags         []string          `json:"tags"`
	Subtasks     []SubtaskInput    `json:"subtasks"`
	LabelIDs     []string          `json:"label_ids"`
	AssigneeIDs  []string          `json:"assignee_ids"`
	Attachments  []AttachmentInput `json:"attachments"`
	CustomFields map[string]string `json:"custom_fields"`
}

// SelectProject switches the form to another project. Assignees chosen for
// the previous project no longer apply, so they are cleared.
func (f *TaskForm) SelectProject(projectID *string) {
	f.ProjectID = projectID
	f.AssigneeIDs = []string{}
}

type SubtaskInput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type AttachmentInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type MoveRequest struct {
	ColumnID string `json:"column_id" binding:"required"`
	Position *int   `json:"position"`
}
