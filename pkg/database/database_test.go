package database

import (
	"path/filepath"
	"testing"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	url := sqlitePrefix + filepath.Join(dir, "nested", "kanban.db")

	db, err := Open(url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := Migrate(db, &widget{}); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Create(&widget{ID: "w1", Name: "first"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var got widget
	if err := db.First(&got, "id = ?", "w1").Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if got.Name != "first" {
		t.Errorf("Name = %q, want first", got.Name)
	}
}
