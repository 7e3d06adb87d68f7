package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	boarddomain "kanban-backend/internal/board/domain"
	"kanban-backend/internal/dashboard/domain"
	taskdomain "kanban-backend/internal/task/domain"
	"kanban-backend/pkg/apperror"
)

const (
	upcomingDays    = 7
	maxCalendarSpan = 62 * 24 * time.Hour
	dayLayout       = "2006-01-02"
)

type DashboardUsecase interface {
	Dashboard(ctx context.Context, userID string, loc *time.Location) (*domain.Dashboard, error)
	// Calendar groups tasks due in [from, to) by calendar day in from's location.
	Calendar(ctx context.Context, userID string, from, to time.Time) ([]domain.CalendarDay, error)
	Report(ctx context.Context, userID, boardID string) (*domain.Report, error)
}

// BoardAccess is satisfied by the board usecase.
type BoardAccess interface {
	Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
	ListBoards(ctx context.Context, userID string) ([]*boarddomain.Board, error)
}

// TaskReader is satisfied by the task repository.
type TaskReader interface {
	ListByBoards(ctx context.Context, boardIDs []string) ([]*taskdomain.Task, error)
	ListDueBetween(ctx context.Context, boardIDs []string, from, to time.Time) ([]*taskdomain.Task, error)
	ListStarred(ctx context.Context, userID string) ([]*taskdomain.Task, error)
}

// ColumnReader is satisfied by the board column repository.
type ColumnReader interface {
	ListByBoard(ctx context.Context, boardID string) ([]*boarddomain.Column, error)
}

type dashboardUsecase struct {
	boards  BoardAccess
	tasks   TaskReader
	columns ColumnReader
	now     func() time.Time
}

func NewDashboardUsecase(boards BoardAccess, tasks TaskReader, columns ColumnReader) DashboardUsecase {
	return &dashboardUsecase{boards: boards, tasks: tasks, columns: columns, now: time.Now}
}

func (u *dashboardUsecase) boardIDs(ctx context.Context, userID string) ([]string, error) {
	boards, err := u.boards.ListBoards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (u *dashboardUsecase) Dashboard(ctx context.Context, userID string, loc *time.Location) (*domain.Dashboard, error) {
	if loc == nil {
		loc = time.UTC
	}
	ids, err := u.boardIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.tasks.ListByBoards(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := u.now().In(loc)

	stats := domain.Stats{ByPriority: domain.NewPriorityCounts()}
	horizon := now.AddDate(0, 0, upcomingDays)
	upcoming := []domain.UpcomingTask{}
	for _, t := range tasks {
		stats.Total++
		stats.ByPriority[t.Priority]++
		if t.IsCompleted() {
			stats.Completed++
			continue
		}
		if t.DueDate == nil {
			continue
		}
		if taskdomain.IsOverdue(t.DueDate, now) {
			stats.Overdue++
		}
		if taskdomain.IsDueToday(t.DueDate, now) {
			stats.DueToday++
		}
		if t.DueDate.After(now) && t.DueDate.Before(horizon) {
			upcoming = append(upcoming, domain.UpcomingTask{Task: t, DueLabel: taskdomain.FormatDueDate(t.DueDate, now)})
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Task.DueDate.Before(*upcoming[j].Task.DueDate)
	})

	stars, err := u.tasks.ListStarred(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list starred: %w", err)
	}
	// Stars outlive board access; only boards the user still sees count.
	visible := make(map[string]bool, len(ids))
	for _, id := range ids {
		visible[id] = true
	}
	starred := make([]*taskdomain.Task, 0, len(stars))
	for _, t := range stars {
		if visible[t.BoardID] {
			starred = append(starred, t)
		}
	}

	return &domain.Dashboard{Stats: stats, Starred: starred, Upcoming: upcoming}, nil
}

func (u *dashboardUsecase) Calendar(ctx context.Context, userID string, from, to time.Time) ([]domain.CalendarDay, error) {
	if !to.After(from) {
		return nil, apperror.Validation("calendar range end must be after its start")
	}
	if to.Sub(from) > maxCalendarSpan {
		return nil, apperror.Validation("calendar range is limited to 62 days")
	}
	ids, err := u.boardIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.tasks.ListDueBetween(ctx, ids, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}

	days := []domain.CalendarDay{}
	index := make(map[string]int)
	for _, t := range tasks {
		key := t.DueDate.In(from.Location()).Format(dayLayout)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, domain.CalendarDay{Date: key})
		}
		days[i].Tasks = append(days[i].Tasks, t)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (u *dashboardUsecase) Report(ctx context.Context, userID, boardID string) (*domain.Report, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, false); err != nil {
		return nil, err
	}
	columns, err := u.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	tasks, err := u.tasks.ListByBoards(ctx, []string{boardID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	report := &domain.Report{
		BoardID:    boardID,
		ByColumn:   make([]domain.ColumnCount, 0, len(columns)),
		ByPriority: domain.NewPriorityCounts(),
		ByAssignee: []domain.AssigneeCount{},
	}
	columnIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		columnIndex[c.ID] = i
		report.ByColumn = append(report.ByColumn, domain.ColumnCount{ColumnID: c.ID, Title: c.Title})
	}
	assigneeIndex := make(map[string]int)

	for _, t := range tasks {
		report.Total++
		report.ByPriority[t.Priority]++
		if i, ok := columnIndex[t.ColumnID]; ok {
			report.ByColumn[i].Count++
		}
		done := t.IsCompleted()
		if done {
			report.Completed++
		}
		if len(t.Assignees) == 0 {
			report.Unassigned++
		}
		for _, a := range t.Assignees {
			i, ok := assigneeIndex[a.UserID]
			if !ok {
				i = len(report.ByAssignee)
				assigneeIndex[a.UserID] = i
				report.ByAssignee = append(report.ByAssignee, domain.AssigneeCount{UserID: a.UserID})
			}
			report.ByAssignee[i].Count++
			if done {
				report.ByAssignee[i].Completed++
			}
		}
	}
	if report.Total > 0 {
		report.CompletionRatio = float64(report.Completed) / float64(report.Total)
	}
	sort.SliceStable(report.ByAssignee, func(i, j int) bool {
		return report.ByAssignee[i].Count > report.ByAssignee[j].Count
	})
	return report, nil
}
