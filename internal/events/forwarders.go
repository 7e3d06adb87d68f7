package events

import (
	"context"
	"log"
	"time"

	"kanban-backend/pkg/realtime"
)

// BoardBroadcaster is satisfied by *realtime.Hub.
type BoardBroadcaster interface {
	BroadcastToBoard(boardID string, msg realtime.Message)
}

// RealtimeHandler mirrors every event to clients watching the board.
func RealtimeHandler(hub BoardBroadcaster) Handler {
	return func(_ context.Context, evt Event) {
		if evt.BoardID == "" {
			return
		}
		hub.BroadcastToBoard(evt.BoardID, realtime.Message{Type: string(evt.Type), Data: evt})
	}
}

// RemotePublisher is satisfied by *pubsub.Publisher.
type RemotePublisher interface {
	Publish(ctx context.Context, payload interface{}, attrs map[string]string) error
}

// ForwardHandler republishes events to an external topic. It runs in its own
// goroutine with a bounded timeout so a slow broker never stalls a request.
func ForwardHandler(pub RemotePublisher) Handler {
	return func(_ context.Context, evt Event) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			attrs := map[string]string{
				"type":     string(evt.Type),
				"board_id": evt.BoardID,
			}
			if err := pub.Publish(ctx, evt, attrs); err != nil {
				log.Printf("[Events] Failed to forward %s for board %s: %v", evt.Type, evt.BoardID, err)
			}
		}()
	}
}
