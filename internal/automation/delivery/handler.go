package delivery

import (
	"net/http"

	"kanban-backend/internal/automation/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AutomationHandler struct {
	automationUsecase usecase.AutomationUsecase
}

func NewAutomationHandler(automationUsecase usecase.AutomationUsecase) *AutomationHandler {
	return &AutomationHandler{automationUsecase: automationUsecase}
}

// GET /api/boards/:id/automations
func (h *AutomationHandler) List(c *gin.Context) {
	rules, err := h.automationUsecase.List(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// POST /api/boards/:id/automations
func (h *AutomationHandler) Create(c *gin.Context) {
	var req usecase.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	rule, err := h.automationUsecase.Create(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// PUT /api/automations/:id
func (h *AutomationHandler) Update(c *gin.Context) {
	var req usecase.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	rule, err := h.automationUsecase.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// PATCH /api/automations/:id/active
func (h *AutomationHandler) SetActive(c *gin.Context) {
	var req usecase.ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	rule, err := h.automationUsecase.SetActive(c.Request.Context(), c.GetString("userID"), c.Param("id"), *req.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DELETE /api/automations/:id
func (h *AutomationHandler) Delete(c *gin.Context) {
	if err := h.automationUsecase.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Automation rule deleted successfully"})
}
