package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

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

	if err := db.AutoMigrate(&Setting{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "u1:quick_notes"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, "u1:quick_notes", []byte(`["buy milk"]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "u1:quick_notes", []byte(`["buy milk","call bob"]`), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "u1:quick_notes")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != `["buy milk","call bob"]` {
		t.Errorf("Get = %s", got)
	}

	first, err := s.SetNX(ctx, "reminder:t1:15min", []byte("1"), time.Hour)
	if err != nil || !first {
		t.Fatalf("first SetNX = %v, %v", first, err)
	}
	second, err := s.SetNX(ctx, "reminder:t1:15min", []byte("1"), time.Hour)
	if err != nil || second {
		t.Fatalf("second SetNX = %v, %v; want false", second, err)
	}

	if err := s.Delete(ctx, "u1:quick_notes"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "u1:quick_notes"); ok {
		t.Error("entry still present after Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, NewGormStore(setupTestDB(t)))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := s.SetNX(ctx, "k", []byte("v"), time.Minute); !ok {
		t.Fatal("SetNX on empty key should succeed")
	}
	now = now.Add(2 * time.Minute)

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expired entry returned by Get")
	}
	if ok, _ := s.SetNX(ctx, "k", []byte("v"), time.Minute); !ok {
		t.Error("SetNX should succeed once the previous entry expired")
	}
}

func TestGormStorePurge(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormStore(db)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if ok, err := s.SetNX(ctx, fmt.Sprintf("reminder:t%d:15min", i), []byte("1"), time.Minute); err != nil || !ok {
			t.Fatalf("SetNX #%d = %v, %v", i, ok, err)
		}
	}
	if err := s.Set(ctx, "u1:quick_notes", []byte(`[]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := s.SetNX(ctx, "reminder:fresh:1hour", []byte("1"), time.Hour); !ok {
		t.Fatal("SetNX on new key should succeed")
	}

	removed, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 100 {
		t.Errorf("Purge removed %d rows, want 100", removed)
	}
	var count int64
	db.Model(&Setting{}).Count(&count)
	if count != 2 {
		t.Errorf("rows left = %d, want 2", count)
	}
}

func TestMemoryStorePurge(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.SetNX(ctx, "reminder:t1:15min", []byte("1"), time.Minute)
	s.Set(ctx, "u1:quick_notes", []byte(`[]`), 0)
	now = now.Add(time.Hour)

	if n, _ := s.Purge(ctx); n != 1 {
		t.Errorf("Purge removed %d, want 1", n)
	}
	if _, ok, _ := s.Get(ctx, "u1:quick_notes"); !ok {
		t.Error("entry without ttl was purged")
	}
}
