package delivery

import (
	"net/http"

	"kanban-backend/internal/customfield/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomFieldHandler struct {
	fieldUsecase usecase.CustomFieldUsecase
}

func NewCustomFieldHandler(fieldUsecase usecase.CustomFieldUsecase) *CustomFieldHandler {
	return &CustomFieldHandler{fieldUsecase: fieldUsecase}
}

// GET /api/boards/:id/custom-fields
func (h *CustomFieldHandler) List(c *gin.Context) {
	fields, err := h.fieldUsecase.List(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

// POST /api/boards/:id/custom-fields
func (h *CustomFieldHandler) Create(c *gin.Context) {
	var req usecase.FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	field, err := h.fieldUsecase.Create(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

// PUT /api/custom-fields/:id
func (h *CustomFieldHandler) Update(c *gin.Context) {
	var req usecase.FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	field, err := h.fieldUsecase.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

// DELETE /api/custom-fields/:id
func (h *CustomFieldHandler) Delete(c *gin.Context) {
	if err := h.fieldUsecase.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "custom field deleted"})
}
