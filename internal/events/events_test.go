package events

import (
	"context"
	"testing"

	"kanban-backend/pkg/realtime"
)

func TestBusDeliversInOrderAndSurvivesPanics(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(func(_ context.Context, evt Event) { got = append(got, "first:"+string(evt.Type)) })
	bus.Subscribe(func(context.Context, Event) { panic("boom") })
	bus.Subscribe(func(_ context.Context, evt Event) { got = append(got, "third:"+evt.TaskID) })

	bus.Publish(context.Background(), Event{Type: TaskCreated, TaskID: "t1"})

	if len(got) != 2 || got[0] != "first:task.created" || got[1] != "third:t1" {
		t.Errorf("got %v", got)
	}
}

func TestBusStampsOccurredAt(t *testing.T) {
	bus := NewBus()
	var evt Event
	bus.Subscribe(func(_ context.Context, e Event) { evt = e })

	bus.Publish(context.Background(), Event{Type: TaskDeleted})

	if evt.OccurredAt.IsZero() {
		t.Error("OccurredAt not set")
	}
}

type recordingHub struct {
	boards []string
	types  []string
}

func (r *recordingHub) BroadcastToBoard(boardID string, msg realtime.Message) {
	r.boards = append(r.boards, boardID)
	r.types = append(r.types, msg.Type)
}

func TestRealtimeHandlerSkipsEventsWithoutBoard(t *testing.T) {
	hub := &recordingHub{}
	h := RealtimeHandler(hub)

	h(context.Background(), Event{Type: TaskMoved, BoardID: "b1"})
	h(context.Background(), Event{Type: TaskMoved})

	if len(hub.boards) != 1 || hub.boards[0] != "b1" || hub.types[0] != "task.moved" {
		t.Errorf("broadcasts = %v %v", hub.boards, hub.types)
	}
}
