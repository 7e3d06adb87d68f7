package delivery

import (
	"net/http"
	"strconv"

	"kanban-backend/internal/task/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// ListBoardTasks returns the tasks of a board
// GET /api/boards/:id/tasks
func (h *TaskHandler) ListBoardTasks(c *gin.Context) {
	tasks, err := h.taskUsecase.ListBoardTasks(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask returns a specific task
// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a task from the dialog form
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var form usecase.TaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, err)
		return
	}
	form.ID = ""

	task, err := h.taskUsecase.SaveTask(c.Request.Context(), c.GetString("userID"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask saves the dialog form over an existing task
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var form usecase.TaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, err)
		return
	}
	form.ID = c.Param("id")

	task, err := h.taskUsecase.SaveTask(c.Request.Context(), c.GetString("userID"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// MoveTask moves a task to another column or position
// PATCH /api/tasks/:id/move
func (h *TaskHandler) MoveTask(c *gin.Context) {
	var req usecase.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	task, err := h.taskUsecase.MoveTask(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.DeleteTask(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ToggleStar stars or unstars a task
// POST /api/tasks/:id/star
func (h *TaskHandler) ToggleStar(c *gin.Context) {
	starred, err := h.taskUsecase.ToggleStar(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"starred": starred})
}

// GET /api/tasks/starred
func (h *TaskHandler) ListStarred(c *gin.Context) {
	tasks, err := h.taskUsecase.ListStarred(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Search finds tasks by fuzzy match on title, description and tags
// GET /api/tasks/search?q=report&limit=20
func (h *TaskHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tasks, err := h.taskUsecase.Search(c.Request.Context(), c.GetString("userID"), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "query": c.Query("q")})
}

// POST /api/subtasks/:id/toggle
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	st, err := h.taskUsecase.ToggleSubtask(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
