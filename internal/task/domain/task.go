package domain

import (
	"time"

	boarddomain "kanban-backend/internal/board/domain"
	customfielddomain "kanban-backend/internal/customfield/domain"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task is a unit of work on a board. Tags, subtasks, labels, assignees,
// attachments and custom field values live in their own tables.
type Task struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	BoardID      string     `json:"board_id" gorm:"index;not null"`
	ColumnID     string     `json:"column_id" gorm:"index;not null"`
	ProjectID    *string    `json:"project_id,omitempty" gorm:"index"`
	CreatorID    string     `json:"creator_id" gorm:"index;not null"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority" gorm:"default:medium"`
	DueDate      *time.Time `json:"due_date,omitempty" gorm:"index"`
	CoverImage   string     `json:"cover_image,omitempty"`
	Position     int        `json:"position" gorm:"default:0"`
	ReminderAt   *time.Time `json:"reminder_at,omitempty"`              // explicit reminder on top of the due-date buckets
	ReminderSent bool       `json:"reminder_sent" gorm:"default:false"` // Track if reminder was sent
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Tags              []Tag                                `json:"tags" gorm:"foreignKey:TaskID"`
	Subtasks          []Subtask                            `json:"subtasks" gorm:"foreignKey:TaskID"`
	Labels            []TaskLabel                          `json:"labels" gorm:"foreignKey:TaskID"`
	Assignees         []TaskAssignee                       `json:"assignees" gorm:"foreignKey:TaskID"`
	Attachments       []Attachment                         `json:"attachments" gorm:"foreignKey:TaskID"`
	CustomFieldValues []customfielddomain.CustomFieldValue `json:"custom_field_values" gorm:"foreignKey:TaskID"`

	Column  *boarddomain.Column `json:"-" gorm:"foreignKey:ColumnID"`
	Starred bool                `json:"starred" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// TagNames returns the tag strings in stored order.
func (t *Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// AssigneeIDs returns the assigned user IDs.
func (t *Task) AssigneeIDs() []string {
	ids := make([]string, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		ids = append(ids, a.UserID)
	}
	return ids
}

// Recipients are the users reminders go to: the assignees, or the creator
// when nobody is assigned.
func (t *Task) Recipients() []string {
	if ids := t.AssigneeIDs(); len(ids) > 0 {
		return ids
	}
	return []string{t.CreatorID}
}

// IsCompleted reports whether the task sits in a done column. The Column
// association must be loaded.
func (t *Task) IsCompleted() bool {
	return t.Column != nil && t.Column.IsDone()
}

type Tag struct {
	TaskID   string `json:"-" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"primaryKey"`
	Position int    `json:"-"`
}

func (Tag) TableName() string {
	return "task_tags"
}

type Subtask struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"task_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Done      bool      `json:"done" gorm:"default:false"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subtask) TableName() string {
	return "subtasks"
}

type TaskLabel struct {
	TaskID  string `json:"-" gorm:"primaryKey"`
	LabelID string `json:"label_id" gorm:"primaryKey;index"`
}

func (TaskLabel) TableName() string {
	return "task_labels"
}

type TaskAssignee struct {
	TaskID string `json:"-" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"primaryKey;index"`
}

func (TaskAssignee) TableName() string {
	return "task_assignees"
}

type Attachment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"task_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "task_attachments"
}

type StarredTask struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	TaskID    string    `json:"task_id" gorm:"primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (StarredTask) TableName() string {
	return "starred_tasks"
}
