package usecase

import (
	"context"
	"fmt"
	"log"

	"kanban-backend/internal/automation/domain"
	"kanban-backend/internal/automation/repository"
	"kanban-backend/internal/events"
	notifdomain "kanban-backend/internal/notification/domain"
	taskdomain "kanban-backend/internal/task/domain"
)

// TaskActions is the narrow write port rules act through. The task
// usecase's AutomationActions satisfies it.
type TaskActions interface {
	MoveToColumn(ctx context.Context, actorID, taskID, columnID string) error
	SetPriority(ctx context.Context, actorID, taskID string, priority taskdomain.Priority) error
	AddLabel(ctx context.Context, actorID, taskID, labelID string) error
	AssignUser(ctx context.Context, actorID, taskID, userID string) error
}

// Notifier is satisfied by *notification.Service.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg notifdomain.Message) error
}

// Engine evaluates a board's active rules against committed task events.
type Engine struct {
	rules    repository.RuleRepository
	actions  TaskActions
	notifier Notifier
}

func NewEngine(rules repository.RuleRepository, actions TaskActions, notifier Notifier) *Engine {
	return &Engine{rules: rules, actions: actions, notifier: notifier}
}

// Handle is subscribed to the event bus. Events caused by rules are ignored.
func (e *Engine) Handle(ctx context.Context, evt events.Event) {
	if evt.Automated || evt.TaskID == "" || evt.BoardID == "" {
		return
	}
	switch evt.Type {
	case events.TaskCreated, events.TaskUpdated, events.TaskMoved:
	default:
		return
	}

	rules, err := e.rules.ListActiveByBoard(ctx, evt.BoardID)
	if err != nil {
		log.Printf("[Automation] Error loading rules for board %s: %v", evt.BoardID, err)
		return
	}

	for _, rule := range rules {
		if !Matches(rule, evt) {
			continue
		}
		if err := e.run(ctx, rule, evt); err != nil {
			log.Printf("[Automation] Rule %q (%s) failed on task %s: %v", rule.Name, rule.ID, evt.TaskID, err)
			continue
		}
		log.Printf("[Automation] Rule %q ran %s on task %s", rule.Name, rule.ActionType, evt.TaskID)
	}
}

// Matches reports whether the rule's trigger fires for evt.
func Matches(rule *domain.AutomationRule, evt events.Event) bool {
	cfg := rule.TriggerConfig
	switch rule.TriggerType {
	case domain.TriggerTaskCreated:
		want := domain.Str(cfg, domain.KeyColumnID)
		return evt.Type == events.TaskCreated && (want == "" || want == evt.String(events.KeyColumnID))

	case domain.TriggerTaskMoved:
		if evt.Type != events.TaskMoved {
			return false
		}
		from := domain.Str(cfg, domain.KeyFromColumnID)
		to := domain.Str(cfg, domain.KeyToColumnID)
		return (from == "" || from == evt.String(events.KeyFromColumnID)) &&
			(to == "" || to == evt.String(events.KeyToColumnID))

	case domain.TriggerPriorityChanged:
		if evt.Type != events.TaskUpdated || !evt.Bool(events.KeyPriorityChange) {
			return false
		}
		want := domain.Str(cfg, domain.KeyToPriority)
		return want == "" || want == evt.String(events.KeyPriority)

	case domain.TriggerTaskCompleted:
		return evt.Type == events.TaskMoved && evt.Bool(events.KeyCompleted)

	case domain.TriggerDueDateSet:
		return (evt.Type == events.TaskCreated || evt.Type == events.TaskUpdated) && evt.Bool(events.KeyDueDateSet)
	}
	return false
}

func (e *Engine) run(ctx context.Context, rule *domain.AutomationRule, evt events.Event) error {
	cfg := rule.ActionConfig
	actor := rule.CreatedBy

	switch rule.ActionType {
	case domain.ActionMoveToColumn:
		return e.actions.MoveToColumn(ctx, actor, evt.TaskID, domain.Str(cfg, domain.KeyColumnID))
	case domain.ActionSetPriority:
		return e.actions.SetPriority(ctx, actor, evt.TaskID, taskdomain.Priority(domain.Str(cfg, domain.KeyPriority)))
	case domain.ActionAddLabel:
		return e.actions.AddLabel(ctx, actor, evt.TaskID, domain.Str(cfg, domain.KeyLabelID))
	case domain.ActionAssignUser:
		return e.actions.AssignUser(ctx, actor, evt.TaskID, domain.Str(cfg, domain.KeyUserID))
	case domain.ActionSendNotification:
		return e.notify(ctx, rule, evt)
	}
	return fmt.Errorf("unknown action type %q", rule.ActionType)
}

func (e *Engine) notify(ctx context.Context, rule *domain.AutomationRule, evt events.Event) error {
	if e.notifier == nil {
		return fmt.Errorf("notifications are not configured")
	}

	title := rule.Name
	recipients := []string{evt.ActorID}
	if task, ok := evt.Payload[events.KeyTask].(*taskdomain.Task); ok && task != nil {
		title = fmt.Sprintf("%s: %s", rule.Name, task.Title)
		recipients = task.Recipients()
	}
	if userID := domain.Str(rule.ActionConfig, domain.KeyUserID); userID != "" {
		recipients = []string{userID}
	}

	msg := notifdomain.Message{
		Title: title,
		Body:  domain.Str(rule.ActionConfig, domain.KeyMessage),
		Tag:   fmt.Sprintf("automation-%s-%s", rule.ID, evt.TaskID),
		Data: map[string]string{
			"type":     "automation",
			"rule_id":  rule.ID,
			"task_id":  evt.TaskID,
			"board_id": evt.BoardID,
		},
	}
	var firstErr error
	for _, userID := range recipients {
		if err := e.notifier.Notify(ctx, userID, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
