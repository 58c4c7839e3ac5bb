package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	statsService *service.StatsService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// GetStats godoc
// GET /api/v1/admin/stats
// Returns question bank counts and practice attempt totals.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.QuestionStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
