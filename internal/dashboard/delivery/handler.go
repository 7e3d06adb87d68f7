package delivery

import (
	"fmt"
	"net/http"
	"time"

	"kanban-backend/internal/dashboard/usecase"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUsecase: dashboardUsecase}
}

// location reads the optional ?tz= IANA zone name.
func location(c *gin.Context) (*time.Location, error) {
	name := c.Query("tz")
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("unknown time zone %q", name))
	}
	return loc, nil
}

// GET /api/dashboard?tz=
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	loc, err := location(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dashboard, err := h.dashboardUsecase.Dashboard(c.Request.Context(), c.GetString("userID"), loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GET /api/calendar?from=2025-01-01&to=2025-02-01&tz=
// Without a range the current month is returned.
func (h *DashboardHandler) Calendar(c *gin.Context) {
	loc, err := location(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0)
	if raw := c.Query("from"); raw != "" {
		if from, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			response.Error(c, apperror.Validation("from must be YYYY-MM-DD"))
			return
		}
		to = from.AddDate(0, 1, 0)
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			response.Error(c, apperror.Validation("to must be YYYY-MM-DD"))
			return
		}
	}

	days, err := h.dashboardUsecase.Calendar(c.Request.Context(), c.GetString("userID"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02"), "days": days})
}

// GET /api/boards/:id/report
func (h *DashboardHandler) Report(c *gin.Context) {
	report, err := h.dashboardUsecase.Report(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
