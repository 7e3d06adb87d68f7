// Package realtime pushes board and user events to connected WebSocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Message is the envelope written to clients.
type Message struct {
	Type    string      `json:"type"`
	BoardID string      `json:"board_id,omitempty"`
	Data    interface{} `json:"data"`
}

type delivery struct {
	boardID string
	userID  string
	payload []byte
}

// Hub tracks clients by board room and by user.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	upgrader   websocket.Upgrader
}

func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Run owns the client set; it returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[Realtime] Client connected: user=%s board=%s", client.userID, client.boardID)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[Realtime] Client disconnected: user=%s board=%s", client.userID, client.boardID)
			}
		case d := <-h.deliver:
			for client := range h.clients {
				if d.boardID != "" && client.boardID != d.boardID {
					continue
				}
				if d.userID != "" && client.userID != d.userID {
					continue
				}
				select {
				case client.send <- d.payload:
				default:
					log.Printf("[Realtime] Send buffer full, dropping client: user=%s", client.userID)
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastToBoard sends msg to every client watching boardID.
func (h *Hub) BroadcastToBoard(boardID string, msg Message) {
	msg.BoardID = boardID
	h.enqueue(delivery{boardID: boardID}, msg)
}

// SendToUser sends msg to every connection of userID, whatever board it watches.
func (h *Hub) SendToUser(userID string, msg Message) {
	h.enqueue(delivery{userID: userID}, msg)
}

func (h *Hub) enqueue(d delivery, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Realtime] Error marshalling message: %v", err)
		return
	}
	d.payload = payload
	select {
	case h.deliver <- d:
	default:
		log.Printf("[Realtime] Delivery queue full, dropping %s message", msg.Type)
	}
}

// ServeWS upgrades the request and attaches the connection to boardID's room.
// An empty boardID subscribes to user-level messages only.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID, boardID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		boardID: boardID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}
