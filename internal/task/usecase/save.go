package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	boarddomain "kanban-backend/internal/board/domain"
	customfielddomain "kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/events"
	"kanban-backend/internal/task/domain"
	"kanban-backend/internal/task/repository"
	"kanban-backend/pkg/apperror"
)

func (u *taskUsecase) SaveTask(ctx context.Context, userID string, form TaskForm) (*domain.Task, error) {
	var existing *domain.Task
	if form.ID != "" {
		found, err := u.repo.FindByID(ctx, form.ID)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, apperror.NotFound("task not found")
		}
		existing = found
		form.BoardID = existing.BoardID
	}
	if form.BoardID == "" {
		return nil, apperror.Validation("board_id is required")
	}

	board, err := u.boards.Authorize(ctx, userID, form.BoardID, true)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, apperror.Validation("title is required")
	}

	priority := form.Priority
	if priority == "" {
		priority = domain.PriorityMedium
		if existing != nil {
			priority = existing.Priority
		}
	}
	if !priority.Valid() {
		return nil, apperror.Validation("priority must be low, medium or high")
	}

	column, err := u.resolveColumn(ctx, board, form.ColumnID, existing)
	if err != nil {
		return nil, err
	}

	projectID := form.ProjectID
	if projectID != nil && strings.TrimSpace(*projectID) == "" {
		projectID = nil
	}
	if projectID != nil {
		role, err := u.members.MemberRole(ctx, *projectID, userID)
		if err != nil {
			return nil, err
		}
		if role == "" {
			return nil, apperror.Forbidden("you are not a member of this project")
		}
	}

	assigneeIDs := form.AssigneeIDs
	if existing != nil && assigneeIDs == nil && !sameProject(existing.ProjectID, projectID) {
		assigneeIDs = []string{}
	}
	if assigneeIDs != nil {
		if assigneeIDs, err = u.checkAssignees(ctx, board, projectID, assigneeIDs); err != nil {
			return nil, err
		}
	}

	in := repository.SaveInput{Create: existing == nil}

	if form.LabelIDs != nil {
		if in.LabelIDs, err = u.checkLabels(ctx, board.ID, form.LabelIDs); err != nil {
			return nil, err
		}
	}
	if form.Tags != nil {
		in.Tags = cleanTags(form.Tags)
	}
	if form.Subtasks != nil {
		in.Subtasks = make([]domain.Subtask, 0, len(form.Subtasks))
		for _, st := range form.Subtasks {
			t := strings.TrimSpace(st.Title)
			if t == "" {
				return nil, apperror.Validation("subtask title is required")
			}
			in.Subtasks = append(in.Subtasks, domain.Subtask{ID: st.ID, Title: t, Done: st.Done})
		}
	}
	if form.Attachments != nil {
		in.Attachments = make([]domain.Attachment, 0, len(form.Attachments))
		for _, a := range form.Attachments {
			if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.URL) == "" {
				return nil, apperror.Validation("attachment name and url are required")
			}
			in.Attachments = append(in.Attachments, domain.Attachment{ID: a.ID, Name: a.Name, URL: a.URL, Size: a.Size, MimeType: a.MimeType})
		}
	}
	if form.CustomFields != nil || existing == nil {
		fields, err := u.fields.ListByBoard(ctx, board.ID)
		if err != nil {
			return nil, err
		}
		values := form.CustomFields
		if values == nil {
			values = map[string]string{}
		}
		if in.CustomFields, err = customfielddomain.ValidateValues(fields, values); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}
	in.AssigneeIDs = assigneeIDs

	task := existing
	if task == nil {
		task = &domain.Task{BoardID: board.ID, CreatorID: userID}
		in.Tags = nonNil(in.Tags)
		if in.Subtasks == nil {
			in.Subtasks = []domain.Subtask{}
		}
	}
	fromColumn := task.ColumnID
	oldPriority := task.Priority
	oldDue := task.DueDate

	if existing == nil || column.ID != fromColumn {
		pos, err := u.repo.NextPosition(ctx, column.ID)
		if err != nil {
			return nil, err
		}
		task.Position = pos
	}
	if !sameTime(task.ReminderAt, form.ReminderAt) {
		task.ReminderSent = false
	}

	task.ColumnID = column.ID
	task.ProjectID = projectID
	task.Title = title
	task.Description = strings.TrimSpace(form.Description)
	task.Priority = priority
	task.DueDate = utcPtr(form.DueDate)
	task.ReminderAt = utcPtr(form.ReminderAt)
	task.CoverImage = form.CoverImage
	task.Column = nil
	in.Task = task

	if err := u.repo.Save(ctx, in); err != nil {
		if errors.Is(err, repository.ErrForeignChild) {
			return nil, apperror.Validation(err.Error())
		}
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	saved, err := u.repo.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, apperror.NotFound("task not found")
	}
	ensureCollections(saved)

	dueSet := saved.DueDate != nil && !sameTime(oldDue, saved.DueDate)
	if existing == nil {
		u.events.Publish(ctx, events.Event{
			Type:    events.TaskCreated,
			BoardID: saved.BoardID,
			TaskID:  saved.ID,
			ActorID: userID,
			Payload: map[string]interface{}{
				events.KeyTask:       saved,
				events.KeyColumnID:   saved.ColumnID,
				events.KeyPriority:   string(saved.Priority),
				events.KeyDueDateSet: dueSet,
			},
		})
		return saved, nil
	}

	u.events.Publish(ctx, events.Event{
		Type:    events.TaskUpdated,
		BoardID: saved.BoardID,
		TaskID:  saved.ID,
		ActorID: userID,
		Payload: map[string]interface{}{
			events.KeyTask:           saved,
			events.KeyColumnID:       saved.ColumnID,
			events.KeyPriority:       string(saved.Priority),
			events.KeyPriorityChange: oldPriority != saved.Priority,
			events.KeyDueDateSet:     dueSet,
		},
	})
	if fromColumn != saved.ColumnID {
		u.publishMove(ctx, userID, saved, fromColumn, false)
	}
	return saved, nil
}

// resolveColumn picks the target column: the requested one, else the task's
// current one, else the board's first column.
func (u *taskUsecase) resolveColumn(ctx context.Context, board *boarddomain.Board, columnID string, existing *domain.Task) (*boarddomain.Column, error) {
	if columnID == "" && existing != nil {
		columnID = existing.ColumnID
	}
	if columnID == "" {
		columns, err := u.columns.ListByBoard(ctx, board.ID)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			return nil, apperror.Validation("board has no columns")
		}
		return columns[0], nil
	}

	column, err := u.columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if column == nil || column.BoardID != board.ID {
		return nil, apperror.Validation("column does not belong to this board")
	}
	return column, nil
}

// checkAssignees keeps assignees to project members, or to the board owner
// for tasks outside any project.
func (u *taskUsecase) checkAssignees(ctx context.Context, board *boarddomain.Board, projectID *string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if projectID == nil {
			if id != board.OwnerID {
				return nil, apperror.Validation("only the board owner can be assigned to a task outside a project")
			}
		} else {
			role, err := u.members.MemberRole(ctx, *projectID, id)
			if err != nil {
				return nil, err
			}
			if role == "" {
				return nil, apperror.Validation(fmt.Sprintf("user %s is not a member of the project", id))
			}
		}
		out = append(out, id)
	}
	return out, nil
}

func (u *taskUsecase) checkLabels(ctx context.Context, boardID string, ids []string) ([]string, error) {
	labels, err := u.labels.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l.ID] = true
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if !known[id] {
			return nil, apperror.Validation("label does not belong to this board")
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
