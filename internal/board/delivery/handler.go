package delivery

import (
	"net/http"

	"kanban-backend/internal/board/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// BoardHandler handles board, column and label requests
type BoardHandler struct {
	boardUsecase usecase.BoardUsecase
}

func NewBoardHandler(boardUsecase usecase.BoardUsecase) *BoardHandler {
	return &BoardHandler{boardUsecase: boardUsecase}
}

// GET /api/boards
func (h *BoardHandler) ListBoards(c *gin.Context) {
	boards, err := h.boardUsecase.ListBoards(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// GET /api/boards/templates
func (h *BoardHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.boardUsecase.ListTemplates()})
}

// POST /api/boards
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req usecase.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	board, err := h.boardUsecase.CreateBoard(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// GET /api/boards/:id
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, err := h.boardUsecase.GetBoard(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// PUT /api/boards/:id
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	var req usecase.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	board, err := h.boardUsecase.UpdateBoard(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DELETE /api/boards/:id
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	if err := h.boardUsecase.DeleteBoard(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "board deleted"})
}

// POST /api/boards/:id/columns
func (h *BoardHandler) CreateColumn(c *gin.Context) {
	var req usecase.ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	column, err := h.boardUsecase.CreateColumn(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// PUT /api/columns/:id
func (h *BoardHandler) UpdateColumn(c *gin.Context) {
	var req usecase.ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	column, err := h.boardUsecase.UpdateColumn(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

// DELETE /api/columns/:id?move_to=<columnID>
func (h *BoardHandler) DeleteColumn(c *gin.Context) {
	if err := h.boardUsecase.DeleteColumn(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Query("move_to")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "column deleted"})
}

// PUT /api/boards/:id/columns/orders
func (h *BoardHandler) ReorderColumns(c *gin.Context) {
	var req usecase.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	columns, err := h.boardUsecase.ReorderColumns(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Orders)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

// GET /api/boards/:id/labels
func (h *BoardHandler) ListLabels(c *gin.Context) {
	labels, err := h.boardUsecase.ListLabels(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// POST /api/boards/:id/labels
func (h *BoardHandler) CreateLabel(c *gin.Context) {
	var req usecase.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	label, err := h.boardUsecase.CreateLabel(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

// PUT /api/labels/:id
func (h *BoardHandler) UpdateLabel(c *gin.Context) {
	var req usecase.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	label, err := h.boardUsecase.UpdateLabel(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

// DELETE /api/labels/:id
func (h *BoardHandler) DeleteLabel(c *gin.Context) {
	if err := h.boardUsecase.DeleteLabel(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "label deleted"})
}
