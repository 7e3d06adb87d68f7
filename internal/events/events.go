// Package events carries board activity from the usecases that commit it to
// the subscribers that react to it: automation rules, live board updates and
// the Pub/Sub forwarder.
package events

import (
	"context"
	"log"
	"sync"
	"time"
)

type Type string

const (
	TaskCreated   Type = "task.created"
	TaskUpdated   Type = "task.updated"
	TaskMoved     Type = "task.moved"
	TaskDeleted   Type = "task.deleted"
	ColumnCreated Type = "column.created"
	ColumnUpdated Type = "column.updated"
	ColumnDeleted Type = "column.deleted"
	BoardUpdated  Type = "board.updated"
)

// Payload keys shared by task events.
const (
	KeyTask           = "task"
	KeyColumnID       = "column_id"
	KeyFromColumnID   = "from_column_id"
	KeyToColumnID     = "to_column_id"
	KeyPriority       = "priority"
	KeyPriorityChange = "priority_changed"
	KeyCompleted      = "completed"
	KeyDueDateSet     = "due_date_set"
)

// Event describes one committed change.
type Event struct {
	Type    Type   `json:"type"`
	BoardID string `json:"board_id"`
	TaskID  string `json:"task_id,omitempty"`
	ActorID string `json:"actor_id"`
	// Automated is set on changes made by automation rules; rules never react to them.
	Automated  bool                   `json:"automated"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type Handler func(ctx context.Context, evt Event)

// Publisher is what usecases depend on.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Events] Handler panicked on %s: %v", evt.Type, r)
				}
			}()
			h(ctx, evt)
		}()
	}
}

// Bool reads a boolean payload flag.
func (e Event) Bool(key string) bool {
	v, _ := e.Payload[key].(bool)
	return v
}

// String reads a string payload value.
func (e Event) String(key string) string {
	v, _ := e.Payload[key].(string)
	return v
}

// Nop discards events; handy when a usecase is used without a bus.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
