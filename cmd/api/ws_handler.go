package api

import (
	"context"
	"log"

	boarddomain "kanban-backend/internal/board/domain"
	"kanban-backend/pkg/realtime"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// BoardAuthorizer checks a user's access to a board.
type BoardAuthorizer interface {
	Authorize(ctx context.Context, userID, boardID string, write bool) (*boarddomain.Board, error)
}

// RealtimeHandler upgrades /ws requests. A ?board_id= joins that board's room
// once the user is allowed to read it; user-addressed messages always arrive.
type RealtimeHandler struct {
	hub    *realtime.Hub
	boards BoardAuthorizer
}

func NewRealtimeHandler(hub *realtime.Hub, boards BoardAuthorizer) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, boards: boards}
}

func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")
	boardID := c.Query("board_id")
	if boardID != "" {
		if _, err := h.boards.Authorize(c.Request.Context(), userID, boardID, false); err != nil {
			response.Error(c, err)
			return
		}
	}

	if err := h.hub.ServeWS(c.Writer, c.Request, userID, boardID); err != nil {
		log.Printf("[Realtime] Upgrade failed: %v", err)
	}
}
