package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestBroadcastReachesOnlyBoardRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if err := hub.ServeWS(w, r, q.Get("user"), q.Get("board")); err != nil {
			t.Errorf("ServeWS: %v", err)
		}
	}))
	defer srv.Close()

	watcher := dial(t, srv, "user=u1&board=b1")
	defer watcher.Close()
	other := dial(t, srv, "user=u2&board=b2")
	defer other.Close()

	// Registration goes through the hub loop; give it a moment.
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToBoard("b1", Message{Type: "task.created", Data: map[string]string{"id": "t1"}})

	watcher.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := watcher.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "task.created" || got.BoardID != "b1" {
		t.Errorf("got %+v", got)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("client on another board received the broadcast")
	}
}
