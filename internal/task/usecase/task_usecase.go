package usecase

import (
	"context"
	"sort"
	"time"

	customfielddomain "kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/events"
	"kanban-backend/internal/task/domain"
	"kanban-backend/internal/task/repository"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/fuzzy"
)

const defaultSearchLimit = 20

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	repo    repository.TaskRepository
	boards  BoardAccess
	columns ColumnReader
	labels  LabelReader
	fields  FieldReader
	members MembershipChecker
	events  events.Publisher
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(repo repository.TaskRepository, boards BoardAccess, columns ColumnReader, labels LabelReader, fields FieldReader, members MembershipChecker, publisher events.Publisher) TaskUsecase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &taskUsecase{
		repo:    repo,
		boards:  boards,
		columns: columns,
		labels:  labels,
		fields:  fields,
		members: members,
		events:  publisher,
	}
}

// taskFor loads the task and checks the user's access to its board.
func (u *taskUsecase) taskFor(ctx context.Context, userID, taskID string, write bool) (*domain.Task, error) {
	task, err := u.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperror.NotFound("task not found")
	}
	if _, err := u.boards.Authorize(ctx, userID, task.BoardID, write); err != nil {
		return nil, err
	}
	ensureCollections(task)
	return task, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := u.taskFor(ctx, userID, taskID, false)
	if err != nil {
		return nil, err
	}
	starred, err := u.repo.StarredSet(ctx, userID, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.Starred = starred[task.ID]
	return task, nil
}

func (u *taskUsecase) ListBoardTasks(ctx context.Context, userID, boardID string) ([]*domain.Task, error) {
	if _, err := u.boards.Authorize(ctx, userID, boardID, false); err != nil {
		return nil, err
	}
	tasks, err := u.repo.ListByBoards(ctx, []string{boardID})
	if err != nil {
		return nil, err
	}
	return tasks, u.markStarred(ctx, userID, tasks)
}

func (u *taskUsecase) MoveTask(ctx context.Context, userID, taskID string, req MoveRequest) (*domain.Task, error) {
	task, err := u.taskFor(ctx, userID, taskID, true)
	if err != nil {
		return nil, err
	}

	column, err := u.columns.FindByID(ctx, req.ColumnID)
	if err != nil {
		return nil, err
	}
	if column == nil || column.BoardID != task.BoardID {
		return nil, apperror.Validation("column does not belong to this board")
	}

	var position int
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperror.Validation("position must not be negative")
		}
		position = *req.Position
	} else {
		if position, err = u.repo.NextPosition(ctx, column.ID); err != nil {
			return nil, err
		}
	}

	from := task.ColumnID
	if err := u.repo.Move(ctx, task, column.ID, position); err != nil {
		return nil, err
	}
	task.Column = column
	u.publishMove(ctx, userID, task, from, false)
	return task, nil
}

func (u *taskUsecase) publishMove(ctx context.Context, actorID string, task *domain.Task, from string, automated bool) {
	completed := false
	if column, err := u.columns.FindByID(ctx, task.ColumnID); err == nil && column != nil {
		completed = column.IsDone()
	}
	u.events.Publish(ctx, events.Event{
		Type:      events.TaskMoved,
		BoardID:   task.BoardID,
		TaskID:    task.ID,
		ActorID:   actorID,
		Automated: automated,
		Payload: map[string]interface{}{
			events.KeyTask:         task,
			events.KeyFromColumnID: from,
			events.KeyToColumnID:   task.ColumnID,
			events.KeyCompleted:    completed && from != task.ColumnID,
		},
	})
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := u.taskFor(ctx, userID, taskID, true)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, task.ID); err != nil {
		return err
	}
	u.events.Publish(ctx, events.Event{
		Type:    events.TaskDeleted,
		BoardID: task.BoardID,
		TaskID:  task.ID,
		ActorID: userID,
	})
	return nil
}

func (u *taskUsecase) ToggleStar(ctx context.Context, userID, taskID string) (bool, error) {
	if _, err := u.taskFor(ctx, userID, taskID, false); err != nil {
		return false, err
	}
	return u.repo.ToggleStar(ctx, userID, taskID)
}

// ListStarred returns starred tasks still visible to the user.
func (u *taskUsecase) ListStarred(ctx context.Context, userID string) ([]*domain.Task, error) {
	tasks, err := u.repo.ListStarred(ctx, userID)
	if err != nil {
		return nil, err
	}
	visible, err := u.visibleBoards(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if visible[t.BoardID] {
			ensureCollections(t)
			out = append(out, t)
		}
	}
	return out, nil
}

func (u *taskUsecase) Search(ctx context.Context, userID, query string, limit int) ([]*domain.Task, error) {
	if fuzzy.Normalize(query) == "" {
		return []*domain.Task{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	visible, err := u.visibleBoards(ctx, userID)
	if err != nil {
		return nil, err
	}
	boardIDs := make([]string, 0, len(visible))
	for id := range visible {
		boardIDs = append(boardIDs, id)
	}
	tasks, err := u.repo.ListByBoards(ctx, boardIDs)
	if err != nil {
		return nil, err
	}

	type hit struct {
		task  *domain.Task
		score float64
	}
	var hits []hit
	for _, t := range tasks {
		s := fuzzy.Score(query, fuzzy.Fields{Title: t.Title, Description: t.Description, Tags: t.TagNames()})
		if s > 0 {
			hits = append(hits, hit{task: t, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].task.UpdatedAt.After(hits[j].task.UpdatedAt)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]*domain.Task, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.task)
	}
	return out, u.markStarred(ctx, userID, out)
}

func (u *taskUsecase) ToggleSubtask(ctx context.Context, userID, subtaskID string) (*domain.Subtask, error) {
	st, err := u.repo.FindSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperror.NotFound("subtask not found")
	}
	task, err := u.taskFor(ctx, userID, st.TaskID, true)
	if err != nil {
		return nil, err
	}

	st.Done = !st.Done
	if err := u.repo.SetSubtaskDone(ctx, st.ID, st.Done); err != nil {
		return nil, err
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == st.ID {
			task.Subtasks[i].Done = st.Done
		}
	}
	u.events.Publish(ctx, events.Event{
		Type:    events.TaskUpdated,
		BoardID: task.BoardID,
		TaskID:  task.ID,
		ActorID: userID,
		Payload: map[string]interface{}{events.KeyTask: task, events.KeyColumnID: task.ColumnID},
	})
	return st, nil
}

func (u *taskUsecase) visibleBoards(ctx context.Context, userID string) (map[string]bool, error) {
	boards, err := u.boards.ListBoards(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(boards))
	for _, b := range boards {
		out[b.ID] = true
	}
	return out, nil
}

func (u *taskUsecase) markStarred(ctx context.Context, userID string, tasks []*domain.Task) error {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ensureCollections(t)
		ids = append(ids, t.ID)
	}
	starred, err := u.repo.StarredSet(ctx, userID, ids)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.Starred = starred[t.ID]
	}
	return nil
}

// ensureCollections replaces nil collections with empty ones so clients
// always receive lists.
func ensureCollections(t *domain.Task) {
	if t.Tags == nil {
		t.Tags = []domain.Tag{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []domain.Subtask{}
	}
	if t.Labels == nil {
		t.Labels = []domain.TaskLabel{}
	}
	if t.Assignees == nil {
		t.Assignees = []domain.TaskAssignee{}
	}
	if t.Attachments == nil {
		t.Attachments = []domain.Attachment{}
	}
	if t.CustomFieldValues == nil {
		t.CustomFieldValues = []customfielddomain.CustomFieldValue{}
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
