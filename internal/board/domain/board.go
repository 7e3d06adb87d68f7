package domain

import (
	"strings"
	"time"
)

// Board is the top-level container of columns and tasks. A board either
// belongs to a project, and is shared with its members, or is private to its owner.
type Board struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id" gorm:"index;not null"`
	ProjectID   *string   `json:"project_id,omitempty" gorm:"index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	Background  string    `json:"background,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Board) TableName() string {
	return "boards"
}

// Column is an ordered bucket of tasks within a board.
type Column struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	BoardID   string    `json:"board_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Position  int       `json:"position" gorm:"column:display_order;not null;default:0"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Column) TableName() string {
	return "columns"
}

// IsDone reports whether tasks in this column count as completed.
func (c *Column) IsDone() bool {
	return IsDoneColumn(c.Title)
}

// IsDoneColumn matches the "Done" column by title, ignoring case and
// surrounding whitespace.
func IsDoneColumn(title string) bool {
	return strings.EqualFold(strings.TrimSpace(title), "done")
}

type Label struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	BoardID   string    `json:"board_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (Label) TableName() string {
	return "labels"
}

// BoardDetail is a board with its ordered columns and labels.
type BoardDetail struct {
	*Board
	Columns []*Column `json:"columns"`
	Labels  []*Label  `json:"labels"`
}
