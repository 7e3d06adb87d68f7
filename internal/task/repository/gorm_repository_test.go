package repository

import (
	"context"
	"testing"
	"time"

	boarddomain "kanban-backend/internal/board/domain"
	customfielddomain "kanban-backend/internal/customfield/domain"
	"kanban-backend/internal/task/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&boarddomain.Column{}, &customfielddomain.CustomFieldValue{},
		&domain.Task{}, &domain.Tag{}, &domain.Subtask{}, &domain.TaskLabel{},
		&domain.TaskAssignee{}, &domain.Attachment{}, &domain.StarredTask{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func newTask(title, columnID string, position int) *domain.Task {
	return &domain.Task{BoardID: "b1", ColumnID: columnID, CreatorID: "u1", Title: title, Priority: domain.PriorityMedium, Position: position}
}

func TestSaveRollsBackEveryStep(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	err := repo.Save(ctx, SaveInput{
		Task:     newTask("Broken", "c1", 0),
		Create:   true,
		Tags:     []string{"a", "b"},
		Subtasks: []domain.Subtask{{ID: "dup", Title: "one"}, {ID: "dup", Title: "two"}},
	})
	if err == nil {
		t.Fatal("Save() should fail on duplicate subtask IDs")
	}

	var tasks, tags int64
	db.Model(&domain.Task{}).Count(&tasks)
	db.Model(&domain.Tag{}).Count(&tags)
	if tasks != 0 || tags != 0 {
		t.Errorf("rows left behind: tasks=%d tags=%d", tasks, tags)
	}
}

func TestSaveReplacesOnlyGivenCollections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	task := newTask("Ship", "c1", 0)
	if err := repo.Save(ctx, SaveInput{Task: task, Create: true, Tags: []string{"x", "y"}, AssigneeIDs: []string{"u1"}}); err != nil {
		t.Fatalf("Save(create) error = %v", err)
	}

	task.Title = "Ship v2"
	if err := repo.Save(ctx, SaveInput{Task: task, AssigneeIDs: []string{}}); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}

	got, err := repo.FindByID(ctx, task.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID() = %v, %v", got, err)
	}
	if got.Title != "Ship v2" {
		t.Errorf("Title = %q", got.Title)
	}
	if names := got.TagNames(); len(names) != 2 || names[0] != "x" {
		t.Errorf("tags = %v, want untouched [x y]", names)
	}
	if len(got.Assignees) != 0 {
		t.Errorf("assignees = %v, want cleared", got.AssigneeIDs())
	}
}

func TestMoveShiftsLaterTasks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	a, b, c := newTask("a", "c1", 0), newTask("b", "c1", 1), newTask("c", "c2", 0)
	for _, task := range []*domain.Task{a, b, c} {
		if err := repo.Save(ctx, SaveInput{Task: task, Create: true}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if err := repo.Move(ctx, c, "c1", 1); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	gotB, _ := repo.FindByID(ctx, b.ID)
	gotC, _ := repo.FindByID(ctx, c.ID)
	if gotC.ColumnID != "c1" || gotC.Position != 1 {
		t.Errorf("moved task at %s/%d", gotC.ColumnID, gotC.Position)
	}
	if gotB.Position != 2 {
		t.Errorf("b position = %d, want 2", gotB.Position)
	}

	next, err := repo.NextPosition(ctx, "c1")
	if err != nil || next != 3 {
		t.Errorf("NextPosition() = %d, %v; want 3", next, err)
	}
	empty, _ := repo.NextPosition(ctx, "c9")
	if empty != 0 {
		t.Errorf("NextPosition(empty) = %d, want 0", empty)
	}
}

func TestPendingRemindersAndDueWithin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Minute)
	later := now.Add(time.Hour)
	remind := newTask("remind", "c1", 0)
	remind.ReminderAt = &past
	remind.DueDate = &later
	quiet := newTask("quiet", "c1", 1)
	for _, task := range []*domain.Task{remind, quiet} {
		if err := repo.Save(ctx, SaveInput{Task: task, Create: true}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	pending, err := repo.FindPendingReminders(ctx, now)
	if err != nil || len(pending) != 1 || pending[0].ID != remind.ID {
		t.Fatalf("FindPendingReminders() = %v, %v", pending, err)
	}
	if err := repo.MarkReminderSent(ctx, remind.ID); err != nil {
		t.Fatalf("MarkReminderSent() error = %v", err)
	}
	pending, _ = repo.FindPendingReminders(ctx, now)
	if len(pending) != 0 {
		t.Errorf("reminder still pending after MarkReminderSent")
	}

	due, err := repo.FindDueWithin(ctx, now.Add(24*time.Hour))
	if err != nil || len(due) != 1 || due[0].ID != remind.ID {
		t.Errorf("FindDueWithin() = %v, %v", due, err)
	}
}
