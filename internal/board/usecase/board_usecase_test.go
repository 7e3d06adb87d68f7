package usecase

import (
	"context"
	"errors"
	"testing"

	"kanban-backend/internal/board/domain"
	"kanban-backend/internal/board/repository"
	"kanban-backend/internal/board/templates"
	"kanban-backend/internal/events"
	teamdomain "kanban-backend/internal/team/domain"
	"kanban-backend/pkg/apperror"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Board{}, &domain.Column{}, &domain.Label{}, &teamdomain.ProjectMember{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	// Tables owned by other packages that board deletion cleans up.
	for _, stmt := range []string{
		"CREATE TABLE tasks (id TEXT PRIMARY KEY, board_id TEXT, column_id TEXT, updated_at DATETIME)",
		"CREATE TABLE task_tags (task_id TEXT)",
		"CREATE TABLE subtasks (task_id TEXT)",
		"CREATE TABLE task_labels (task_id TEXT, label_id TEXT)",
		"CREATE TABLE task_assignees (task_id TEXT)",
		"CREATE TABLE task_attachments (task_id TEXT)",
		"CREATE TABLE starred_tasks (task_id TEXT)",
		"CREATE TABLE custom_field_values (task_id TEXT)",
		"CREATE TABLE automation_rules (board_id TEXT)",
		"CREATE TABLE custom_fields (board_id TEXT)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

type fakeMembers struct {
	roles map[string]teamdomain.Role // projectID/userID
}

func (f *fakeMembers) MemberRole(_ context.Context, projectID, userID string) (teamdomain.Role, error) {
	return f.roles[projectID+"/"+userID], nil
}

func newTestUsecase(t *testing.T) (BoardUsecase, *gorm.DB, *fakeMembers, *[]events.Event) {
	db := setupTestDB(t)
	tpls, err := templates.Load()
	if err != nil {
		t.Fatalf("templates.Load() error = %v", err)
	}
	members := &fakeMembers{roles: map[string]teamdomain.Role{}}
	bus := events.NewBus()
	var published []events.Event
	bus.Subscribe(func(_ context.Context, evt events.Event) { published = append(published, evt) })

	uc := NewBoardUsecase(repository.NewBoardRepository(db), repository.NewColumnRepository(db), repository.NewLabelRepository(db), members, bus, tpls)
	return uc, db, members, &published
}

func TestCreateBoardFromDefaultTemplate(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t)
	ctx := context.Background()

	created, err := uc.CreateBoard(ctx, "u1", CreateBoardRequest{Name: "Roadmap"})
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}

	detail, err := uc.GetBoard(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	want := []string{"To Do", "In Progress", "Done"}
	if len(detail.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d", len(detail.Columns), len(want))
	}
	for i, col := range detail.Columns {
		if col.Title != want[i] || col.Position != i {
			t.Errorf("column %d = %q@%d, want %q@%d", i, col.Title, col.Position, want[i], i)
		}
	}
}

func TestCreateBoardUnknownTemplate(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t)

	_, err := uc.CreateBoard(context.Background(), "u1", CreateBoardRequest{Name: "X", Template: "nope"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestAuthorizeProjectRoles(t *testing.T) {
	uc, db, members, _ := newTestUsecase(t)
	ctx := context.Background()

	projectID := "p1"
	for user, role := range map[string]teamdomain.Role{
		"owner":  teamdomain.RoleOwner,
		"viewer": teamdomain.RoleViewer,
		"member": teamdomain.RoleMember,
	} {
		members.roles[projectID+"/"+user] = role
		db.Create(&teamdomain.ProjectMember{ProjectID: projectID, UserID: user, Role: role})
	}

	board, err := uc.CreateBoard(ctx, "owner", CreateBoardRequest{Name: "Shared", ProjectID: &projectID})
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}

	if _, err := uc.Authorize(ctx, "viewer", board.ID, false); err != nil {
		t.Errorf("viewer read error = %v", err)
	}
	if _, err := uc.Authorize(ctx, "viewer", board.ID, true); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("viewer write error = %v, want forbidden", err)
	}
	if _, err := uc.Authorize(ctx, "member", board.ID, true); err != nil {
		t.Errorf("member write error = %v", err)
	}
	if _, err := uc.Authorize(ctx, "stranger", board.ID, false); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("stranger read error = %v, want not found", err)
	}

	visible, err := uc.ListBoards(ctx, "viewer")
	if err != nil || len(visible) != 1 {
		t.Errorf("ListBoards(viewer) = %v, %v; want the shared board", visible, err)
	}
}

func TestReorderColumnsRejectsForeignColumn(t *testing.T) {
	uc, _, _, published := newTestUsecase(t)
	ctx := context.Background()

	a, _ := uc.CreateBoard(ctx, "u1", CreateBoardRequest{Name: "A"})
	b, _ := uc.CreateBoard(ctx, "u1", CreateBoardRequest{Name: "B"})

	_, err := uc.ReorderColumns(ctx, "u1", a.ID, map[string]int{b.Columns[0].ID: 0})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}

	columns, err := uc.ReorderColumns(ctx, "u1", a.ID, map[string]int{
		a.Columns[0].ID: 2,
		a.Columns[2].ID: 0,
	})
	if err != nil {
		t.Fatalf("ReorderColumns() error = %v", err)
	}
	if columns[0].Title != "Done" || columns[2].Title != "To Do" {
		t.Errorf("order = %s, %s, %s", columns[0].Title, columns[1].Title, columns[2].Title)
	}
	if len(*published) == 0 || (*published)[len(*published)-1].Type != events.ColumnUpdated {
		t.Errorf("expected a column.updated event, got %+v", *published)
	}
}

func TestDeleteColumnWithTasks(t *testing.T) {
	uc, db, _, _ := newTestUsecase(t)
	ctx := context.Background()

	board, _ := uc.CreateBoard(ctx, "u1", CreateBoardRequest{Name: "A"})
	todo, doing := board.Columns[0], board.Columns[1]
	if err := db.Exec("INSERT INTO tasks (id, board_id, column_id) VALUES ('t1', ?, ?)", board.ID, todo.ID).Error; err != nil {
		t.Fatalf("insert task: %v", err)
	}

	if err := uc.DeleteColumn(ctx, "u1", todo.ID, ""); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("DeleteColumn() error = %v, want conflict", err)
	}
	if err := uc.DeleteColumn(ctx, "u1", todo.ID, doing.ID); err != nil {
		t.Fatalf("DeleteColumn(move) error = %v", err)
	}

	var columnID string
	db.Raw("SELECT column_id FROM tasks WHERE id = 't1'").Scan(&columnID)
	if columnID != doing.ID {
		t.Errorf("task column = %s, want %s", columnID, doing.ID)
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	uc, db, _, _ := newTestUsecase(t)
	ctx := context.Background()

	board, _ := uc.CreateBoard(ctx, "u1", CreateBoardRequest{Name: "A"})
	db.Exec("INSERT INTO tasks (id, board_id, column_id) VALUES ('t1', ?, ?)", board.ID, board.Columns[0].ID)
	db.Exec("INSERT INTO subtasks (task_id) VALUES ('t1')")

	if err := uc.DeleteBoard(ctx, "u1", board.ID); err != nil {
		t.Fatalf("DeleteBoard() error = %v", err)
	}

	var count int64
	db.Table("subtasks").Count(&count)
	if count != 0 {
		t.Errorf("subtasks left = %d, want 0", count)
	}
	db.Model(&domain.Column{}).Count(&count)
	if count != 0 {
		t.Errorf("columns left = %d, want 0", count)
	}
}
