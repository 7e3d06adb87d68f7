package usecase

import (
	"context"
	"fmt"

	"kanban-backend/internal/events"
	"kanban-backend/internal/task/domain"
	"kanban-backend/pkg/apperror"
)

// AutomationActions applies rule actions to tasks. Changes are published as
// automated events so rules never react to their own effects.
type AutomationActions struct {
	u *taskUsecase
}

// NewAutomationActions shares the repositories of a task usecase built by
// NewTaskUsecase.
func NewAutomationActions(tasks TaskUsecase) (*AutomationActions, error) {
	u, ok := tasks.(*taskUsecase)
	if !ok {
		return nil, fmt.Errorf("automation actions need the gorm-backed task usecase, got %T", tasks)
	}
	return &AutomationActions{u: u}, nil
}

// load returns the task once the acting rule owner may still change its board.
func (a *AutomationActions) load(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	task, err := a.u.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperror.NotFound("task not found")
	}
	if _, err := a.u.boards.Authorize(ctx, actorID, task.BoardID, true); err != nil {
		return nil, fmt.Errorf("rule owner %s cannot change board %s: %w", actorID, task.BoardID, err)
	}
	return task, nil
}

func (a *AutomationActions) MoveToColumn(ctx context.Context, actorID, taskID, columnID string) error {
	task, err := a.load(ctx, actorID, taskID)
	if err != nil {
		return err
	}
	if task.ColumnID == columnID {
		return nil
	}
	column, err := a.u.columns.FindByID(ctx, columnID)
	if err != nil {
		return err
	}
	if column == nil || column.BoardID != task.BoardID {
		return apperror.Validation("column does not belong to this board")
	}
	pos, err := a.u.repo.NextPosition(ctx, columnID)
	if err != nil {
		return err
	}

	from := task.ColumnID
	if err := a.u.repo.Move(ctx, task, columnID, pos); err != nil {
		return err
	}
	task.Column = column
	a.u.publishMove(ctx, actorID, task, from, true)
	return nil
}

func (a *AutomationActions) SetPriority(ctx context.Context, actorID, taskID string, priority domain.Priority) error {
	if !priority.Valid() {
		return apperror.Validation("priority must be low, medium or high")
	}
	task, err := a.load(ctx, actorID, taskID)
	if err != nil {
		return err
	}
	if task.Priority == priority {
		return nil
	}
	if err := a.u.repo.UpdatePriority(ctx, taskID, priority); err != nil {
		return err
	}
	task.Priority = priority
	a.publishUpdate(ctx, actorID, task, map[string]interface{}{
		events.KeyPriority:       string(priority),
		events.KeyPriorityChange: true,
	})
	return nil
}

func (a *AutomationActions) AddLabel(ctx context.Context, actorID, taskID, labelID string) error {
	task, err := a.load(ctx, actorID, taskID)
	if err != nil {
		return err
	}
	if _, err := a.u.checkLabels(ctx, task.BoardID, []string{labelID}); err != nil {
		return err
	}
	if err := a.u.repo.AddLabel(ctx, taskID, labelID); err != nil {
		return err
	}
	a.publishUpdate(ctx, actorID, task, nil)
	return nil
}

func (a *AutomationActions) AssignUser(ctx context.Context, actorID, taskID, userID string) error {
	task, err := a.load(ctx, actorID, taskID)
	if err != nil {
		return err
	}
	board, err := a.u.boards.Authorize(ctx, userID, task.BoardID, false)
	if err != nil {
		return fmt.Errorf("user %s cannot see board %s: %w", userID, task.BoardID, err)
	}
	if _, err := a.u.checkAssignees(ctx, board, task.ProjectID, []string{userID}); err != nil {
		return err
	}
	if err := a.u.repo.AddAssignee(ctx, taskID, userID); err != nil {
		return err
	}
	a.publishUpdate(ctx, actorID, task, nil)
	return nil
}

func (a *AutomationActions) publishUpdate(ctx context.Context, actorID string, task *domain.Task, extra map[string]interface{}) {
	payload := map[string]interface{}{
		events.KeyColumnID: task.ColumnID,
		events.KeyPriority: string(task.Priority),
	}
	if fresh, err := a.u.repo.FindByID(ctx, task.ID); err == nil && fresh != nil {
		ensureCollections(fresh)
		payload[events.KeyTask] = fresh
	}
	for k, v := range extra {
		payload[k] = v
	}
	a.u.events.Publish(ctx, events.Event{
		Type:      events.TaskUpdated,
		BoardID:   task.BoardID,
		TaskID:    task.ID,
		ActorID:   actorID,
		Automated: true,
		Payload:   payload,
	})
}
