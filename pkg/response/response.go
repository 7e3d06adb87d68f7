package response

import (
	"log"
	"net/http"

	"kanban-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Error writes err as {"error": msg} with the status it carries. Unexpected
// errors are logged and hidden behind a generic message.
func Error(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest is used for binding failures.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
