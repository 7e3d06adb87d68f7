package domain

import (
	taskdomain "kanban-backend/internal/task/domain"
)

// Stats is the summary shown on the dashboard view.
type Stats struct {
	Total      int                         `json:"total"`
	Completed  int                         `json:"completed"`
	Overdue    int                         `json:"overdue"`
	DueToday   int                         `json:"due_today"`
	ByPriority map[taskdomain.Priority]int `json:"by_priority"`
}

// UpcomingTask pairs a task with the label its card shows.
type UpcomingTask struct {
	Task     *taskdomain.Task `json:"task"`
	DueLabel string           `json:"due_label"`
}

type Dashboard struct {
	Stats    Stats              `json:"stats"`
	Starred  []*taskdomain.Task `json:"starred"`
	Upcoming []UpcomingTask     `json:"upcoming"`
}

// CalendarDay holds the tasks due on one calendar day (YYYY-MM-DD).
type CalendarDay struct {
	Date  string             `json:"date"`
	Tasks []*taskdomain.Task `json:"tasks"`
}

type ColumnCount struct {
	ColumnID string `json:"column_id"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
}

type AssigneeCount struct {
	UserID    string `json:"user_id"`
	Count     int    `json:"count"`
	Completed int    `json:"completed"`
}

// Report breaks one board down for the reports view.
type Report struct {
	BoardID         string                      `json:"board_id"`
	Total           int                         `json:"total"`
	Completed       int                         `json:"completed"`
	CompletionRatio float64                     `json:"completion_ratio"`
	ByColumn        []ColumnCount               `json:"by_column"`
	ByPriority      map[taskdomain.Priority]int `json:"by_priority"`
	ByAssignee      []AssigneeCount             `json:"by_assignee"`
	Unassigned      int                         `json:"unassigned"`
}

func NewPriorityCounts() map[taskdomain.Priority]int {
	return map[taskdomain.Priority]int{
		taskdomain.PriorityHigh:   0,
		taskdomain.PriorityMedium: 0,
		taskdomain.PriorityLow:    0,
	}
}
