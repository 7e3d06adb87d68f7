package api

import (
	"io"
	"net/http"

	"kanban-backend/internal/preference/domain"
	"kanban-backend/internal/preference/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PreferenceHandler serves the per-user feature state the client keeps
// between sessions (current view, quick notes, pomodoro, notification settings).
type PreferenceHandler struct {
	preferenceUsecase usecase.PreferenceUsecase
}

func NewPreferenceHandler(preferenceUsecase usecase.PreferenceUsecase) *PreferenceHandler {
	return &PreferenceHandler{preferenceUsecase: preferenceUsecase}
}

// All returns every stored preference
// GET /api/preferences
func (h *PreferenceHandler) All(c *gin.Context) {
	prefs, err := h.preferenceUsecase.All(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// Get returns the raw JSON stored under key
// GET /api/preferences/:key
func (h *PreferenceHandler) Get(c *gin.Context) {
	value, err := h.preferenceUsecase.Get(c.Request.Context(), c.GetString("userID"), domain.Key(c.Param("key")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

// Put replaces the value under key with the request body
// PUT /api/preferences/:key
func (h *PreferenceHandler) Put(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	key := domain.Key(c.Param("key"))
	if err := h.preferenceUsecase.Put(c.Request.Context(), c.GetString("userID"), key, body); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "preference saved", "key": key})
}

// DELETE /api/preferences/:key
func (h *PreferenceHandler) Delete(c *gin.Context) {
	if err := h.preferenceUsecase.Delete(c.Request.Context(), c.GetString("userID"), domain.Key(c.Param("key"))); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "preference deleted"})
}
