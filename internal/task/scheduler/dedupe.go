package scheduler

import (
	"context"
	"fmt"
	"time"

	"kanban-backend/internal/task/domain"
	"kanban-backend/pkg/kvstore"
)

// Deduper remembers which (task, bucket) reminders already fired. Backed by
// the database or redis the record survives restarts; a memory store loses it.
type Deduper struct {
	store kvstore.Store
	ttl   time.Duration
}

func NewDeduper(store kvstore.Store, ttl time.Duration) *Deduper {
	return &Deduper{store: store, ttl: ttl}
}

func dedupeKey(taskID string, bucket domain.ReminderBucket) string {
	return fmt.Sprintf("reminder:%s:%s", taskID, bucket)
}

// Claim records the pair and reports whether this call was the first.
func (d *Deduper) Claim(ctx context.Context, taskID string, bucket domain.ReminderBucket) (bool, error) {
	return d.store.SetNX(ctx, dedupeKey(taskID, bucket), []byte("1"), d.ttl)
}

// Release forgets the pair after every delivery attempt failed, so the next
// scan retries it.
func (d *Deduper) Release(ctx context.Context, taskID string, bucket domain.ReminderBucket) error {
	return d.store.Delete(ctx, dedupeKey(taskID, bucket))
}
