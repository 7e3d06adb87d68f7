package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	authdomain "kanban-backend/internal/auth/domain"
	"kanban-backend/internal/auth/repository"
)

type SessionHandler func(ctx context.Context, evt authdomain.SessionEvent)

// SessionBroker fans session events out to subscribers.
type SessionBroker struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]SessionHandler
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{handlers: make(map[int]SessionHandler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *SessionBroker) Subscribe(h SessionHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

func (b *SessionBroker) Publish(ctx context.Context, evt authdomain.SessionEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	b.mu.RLock()
	handlers := make([]SessionHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, evt)
	}
}

// ProfileProvisioner creates the profile row the first time a user starts a session.
func ProfileProvisioner(profiles repository.ProfileRepository) SessionHandler {
	return func(ctx context.Context, evt authdomain.SessionEvent) {
		if evt.User == nil {
			return
		}
		if evt.Type != authdomain.SessionSignedUp && evt.Type != authdomain.SessionSignedIn {
			return
		}
		existing, err := profiles.FindByUserID(ctx, evt.User.ID)
		if err != nil {
			log.Printf("[Auth] Failed to look up profile for %s: %v", evt.User.ID, err)
			return
		}
		if existing != nil {
			return
		}
		profile := &authdomain.Profile{
			UserID:      evt.User.ID,
			DisplayName: evt.User.Name,
			AvatarURL:   evt.User.AvatarURL,
		}
		if err := profiles.CreateIfMissing(ctx, profile); err != nil {
			log.Printf("[Auth] Failed to create profile for %s: %v", evt.User.ID, err)
		}
	}
}
