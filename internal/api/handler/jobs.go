package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborline/freightdesk/internal/api/middleware"
	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/service"
)

// JobHandler handles job polling endpoints.
type JobHandler struct {
	queries *service.JobQueryService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(queries *service.JobQueryService) *JobHandler {
	return &JobHandler{queries: queries}
}

// GetJob handles GET /api/v1/jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	view, err := h.queries.GetJob(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "job belongs to another caller"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": view})
}

// ListPending handles GET /api/v1/jobs/pending.
func (h *JobHandler) ListPending(c *gin.Context) {
	views, err := h.queries.ListPending(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": views, "total": len(views)})
}

// ListHistory handles GET /api/v1/jobs/history.
func (h *JobHandler) ListHistory(c *gin.Context) {
	views, err := h.queries.ListHistory(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": views, "total": len(views)})
}

// GetStats handles GET /api/v1/stats.
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.queries.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
