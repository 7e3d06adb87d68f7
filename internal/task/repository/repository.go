package repository

import (
	"context"
	"time"

	"kanban-backend/internal/task/domain"
)

// SaveInput is one task save. Nil collections are left as stored; non-nil
// collections replace what is stored, so an empty slice clears.
type SaveInput struct {
	Task   *domain.Task
	Create bool

	Tags         []string
	Subtasks     []domain.Subtask
	LabelIDs     []string
	AssigneeIDs  []string
	Attachments  []domain.Attachment
	CustomFields map[string]string
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Save writes the task row and every non-nil collection in one transaction.
	Save(ctx context.Context, in SaveInput) error

	// FindByID finds a task by its ID with all collections loaded
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// ListByBoards returns tasks of the given boards ordered by column and position
	ListByBoards(ctx context.Context, boardIDs []string) ([]*domain.Task, error)

	// ListDueBetween returns tasks of the given boards due in [from, to)
	ListDueBetween(ctx context.Context, boardIDs []string, from, to time.Time) ([]*domain.Task, error)

	// Move puts the task at position in column, shifting later tasks down
	Move(ctx context.Context, task *domain.Task, columnID string, position int) error

	NextPosition(ctx context.Context, columnID string) (int, error)

	// UpdatePriority changes only the priority column
	UpdatePriority(ctx context.Context, taskID string, priority domain.Priority) error
	AddLabel(ctx context.Context, taskID, labelID string) error
	AddAssignee(ctx context.Context, taskID, userID string) error

	// Delete deletes a task and its collections
	Delete(ctx context.Context, id string) error

	// ToggleStar flips the user's star on the task and reports the new state
	ToggleStar(ctx context.Context, userID, taskID string) (bool, error)
	ListStarred(ctx context.Context, userID string) ([]*domain.Task, error)
	StarredSet(ctx context.Context, userID string, taskIDs []string) (map[string]bool, error)

	FindSubtask(ctx context.Context, id string) (*domain.Subtask, error)
	SetSubtaskDone(ctx context.Context, id string, done bool) error

	// FindDueWithin returns tasks with a due date not after until, with
	// their column and assignees loaded
	FindDueWithin(ctx context.Context, until time.Time) ([]*domain.Task, error)

	// FindPendingReminders finds tasks that need reminder notifications
	// Returns tasks where reminder_at <= now AND reminder_sent = false
	FindPendingReminders(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(ctx context.Context, id string) error
}
