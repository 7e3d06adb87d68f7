// Package kvstore holds small string-keyed blobs: per-user feature state and
// reminder de-duplication markers.
package kvstore

import (
	"context"
	"time"
)

// Store is implemented by the memory, gorm and redis backends.
// A zero ttl means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by backends that do not expire entries on their own.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}
