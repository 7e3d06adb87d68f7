package repository

import (
	"context"
	"errors"
	"time"

	customfielddomain "kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrForeignChild is returned by Save when a subtask or attachment ID given
// for the task already belongs to another task.
var ErrForeignChild = errors.New("subtask or attachment belongs to another task")

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func withCollections(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Labels").
		Preload("Assignees").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("CustomFieldValues").
		Preload("Column")
}

// ownedBy fails with ErrForeignChild when any of ids is stored for a task
// other than taskID. Empty ids are new rows.
func ownedBy(tx *gorm.DB, model interface{}, taskID string, ids []string) error {
	given := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			given = append(given, id)
		}
	}
	if len(given) == 0 {
		return nil
	}
	var foreign int64
	if err := tx.Model(model).Where("id IN ? AND task_id <> ?", given, taskID).Count(&foreign).Error; err != nil {
		return err
	}
	if foreign > 0 {
		return ErrForeignChild
	}
	return nil
}

func (r *gormTaskRepository) Save(ctx context.Context, in SaveInput) error {
	task := in.Task
	now := time.Now().UTC()
	if in.Create {
		if task.ID == "" {
			task.ID = uuid.New().String()
		}
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Create {
			if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
				return err
			}
		}

		if in.Tags != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&domain.Tag{}).Error; err != nil {
				return err
			}
			tags := make([]domain.Tag, 0, len(in.Tags))
			for i, name := range in.Tags {
				tags = append(tags, domain.Tag{TaskID: task.ID, Name: name, Position: i})
			}
			if len(tags) > 0 {
				if err := tx.Create(&tags).Error; err != nil {
					return err
				}
			}
		}

		if in.Subtasks != nil {
			ids := make([]string, 0, len(in.Subtasks))
			for _, st := range in.Subtasks {
				ids = append(ids, st.ID)
			}
			if err := ownedBy(tx, &domain.Subtask{}, task.ID, ids); err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", task.ID).Delete(&domain.Subtask{}).Error; err != nil {
				return err
			}
			subtasks := make([]domain.Subtask, 0, len(in.Subtasks))
			for i, st := range in.Subtasks {
				if st.ID == "" {
					st.ID = uuid.New().String()
				}
				if st.CreatedAt.IsZero() {
					st.CreatedAt = now
				}
				st.TaskID = task.ID
				st.Position = i
				subtasks = append(subtasks, st)
			}
			if len(subtasks) > 0 {
				if err := tx.Create(&subtasks).Error; err != nil {
					return err
				}
			}
		}

		if in.LabelIDs != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&domain.TaskLabel{}).Error; err != nil {
				return err
			}
			labels := make([]domain.TaskLabel, 0, len(in.LabelIDs))
			for _, id := range in.LabelIDs {
				labels = append(labels, domain.TaskLabel{TaskID: task.ID, LabelID: id})
			}
			if len(labels) > 0 {
				if err := tx.Create(&labels).Error; err != nil {
					return err
				}
			}
		}

		if in.AssigneeIDs != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&domain.TaskAssignee{}).Error; err != nil {
				return err
			}
			assignees := make([]domain.TaskAssignee, 0, len(in.AssigneeIDs))
			for _, id := range in.AssigneeIDs {
				assignees = append(assignees, domain.TaskAssignee{TaskID: task.ID, UserID: id})
			}
			if len(assignees) > 0 {
				if err := tx.Create(&assignees).Error; err != nil {
					return err
				}
			}
		}

		if in.Attachments != nil {
			ids := make([]string, 0, len(in.Attachments))
			for _, a := range in.Attachments {
				ids = append(ids, a.ID)
			}
			if err := ownedBy(tx, &domain.Attachment{}, task.ID, ids); err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", task.ID).Delete(&domain.Attachment{}).Error; err != nil {
				return err
			}
			attachments := make([]domain.Attachment, 0, len(in.Attachments))
			for _, a := range in.Attachments {
				if a.ID == "" {
					a.ID = uuid.New().String()
				}
				if a.CreatedAt.IsZero() {
					a.CreatedAt = now
				}
				a.TaskID = task.ID
				attachments = append(attachments, a)
			}
			if len(attachments) > 0 {
				if err := tx.Create(&attachments).Error; err != nil {
					return err
				}
			}
		}

		if in.CustomFields != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&customfielddomain.CustomFieldValue{}).Error; err != nil {
				return err
			}
			values := make([]customfielddomain.CustomFieldValue, 0, len(in.CustomFields))
			for fieldID, v := range in.CustomFields {
				if v == "" {
					continue
				}
				values = append(values, customfielddomain.CustomFieldValue{TaskID: task.ID, FieldID: fieldID, Value: v, UpdatedAt: now})
			}
			if len(values) > 0 {
				if err := tx.Create(&values).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := withCollections(r.db.WithContext(ctx)).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) ListByBoards(ctx context.Context, boardIDs []string) ([]*domain.Task, error) {
	if len(boardIDs) == 0 {
		return []*domain.Task{}, nil
	}
	var tasks []*domain.Task
	err := withCollections(r.db.WithContext(ctx)).
		Where("board_id IN ?", boardIDs).
		Order("column_id ASC, position ASC, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) ListDueBetween(ctx context.Context, boardIDs []string, from, to time.Time) ([]*domain.Task, error) {
	if len(boardIDs) == 0 {
		return []*domain.Task{}, nil
	}
	var tasks []*domain.Task
	err := withCollections(r.db.WithContext(ctx)).
		Where("board_id IN ? AND due_date >= ? AND due_date < ?", boardIDs, from.UTC(), to.UTC()).
		Order("due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) Move(ctx context.Context, task *domain.Task, columnID string, position int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Task{}).
			Where("column_id = ? AND position >= ? AND id <> ?", columnID, position, task.ID).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Task{}).Where("id = ?", task.ID).
			Updates(map[string]interface{}{"column_id": columnID, "position": position, "updated_at": now}).Error; err != nil {
			return err
		}
		task.ColumnID = columnID
		task.Position = position
		task.UpdatedAt = now
		return nil
	})
}

func (r *gormTaskRepository) NextPosition(ctx context.Context, columnID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("column_id = ?", columnID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *gormTaskRepository) UpdatePriority(ctx context.Context, taskID string, priority domain.Priority) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", taskID).
		Updates(map[string]interface{}{"priority": priority, "updated_at": time.Now().UTC()}).Error
}

func (r *gormTaskRepository) AddLabel(ctx context.Context, taskID, labelID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.TaskLabel{TaskID: taskID, LabelID: labelID}).Error
}

func (r *gormTaskRepository) AddAssignee(ctx context.Context, taskID, userID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.TaskAssignee{TaskID: taskID, UserID: userID}).Error
}

func (r *gormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&domain.Tag{}, &domain.Subtask{}, &domain.TaskLabel{}, &domain.TaskAssignee{},
			&domain.Attachment{}, &domain.StarredTask{}, &customfielddomain.CustomFieldValue{},
		}
		for _, model := range children {
			if err := tx.Where("task_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Task{}, "id = ?", id).Error
	})
}

func (r *gormTaskRepository) ToggleStar(ctx context.Context, userID, taskID string) (bool, error) {
	starred := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND task_id = ?", userID, taskID).Delete(&domain.StarredTask{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		starred = true
		return tx.Create(&domain.StarredTask{UserID: userID, TaskID: taskID, CreatedAt: time.Now().UTC()}).Error
	})
	return starred, err
}

func (r *gormTaskRepository) ListStarred(ctx context.Context, userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := withCollections(r.db.WithContext(ctx)).
		Joins("JOIN starred_tasks st ON st.task_id = tasks.id").
		Where("st.user_id = ?", userID).
		Order("st.created_at DESC").
		Find(&tasks).Error
	for _, t := range tasks {
		t.Starred = true
	}
	return tasks, err
}

func (r *gormTaskRepository) StarredSet(ctx context.Context, userID string, taskIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(taskIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.StarredTask{}).
		Where("user_id = ? AND task_id IN ?", userID, taskIDs).
		Pluck("task_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

func (r *gormTaskRepository) FindSubtask(ctx context.Context, id string) (*domain.Subtask, error) {
	var st domain.Subtask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (r *gormTaskRepository) SetSubtaskDone(ctx context.Context, id string, done bool) error {
	return r.db.WithContext(ctx).Model(&domain.Subtask{}).Where("id = ?", id).Update("done", done).Error
}

func (r *gormTaskRepository) FindDueWithin(ctx context.Context, until time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Preload("Column").
		Preload("Assignees").
		Where("due_date IS NOT NULL AND due_date <= ?", until.UTC()).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) FindPendingReminders(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Preload("Column").
		Preload("Assignees").
		Where("reminder_at <= ? AND reminder_sent = ?", now.UTC(), false).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) MarkReminderSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"updated_at":    time.Now().UTC(),
		}).Error
}
