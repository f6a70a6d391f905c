package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborline/freightdesk/internal/api/middleware"
	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/service"
)

// IngestHandler handles bulk-ingestion submissions.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler creates a new ingest handler.
// Parameters:
//   - ingest: ingest service instance.
// Returns:
//   - *IngestHandler: initialized handler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Submit handles POST /api/v1/ingest. The job is accepted and processed
// out-of-band; the response carries only the job ID for polling.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *IngestHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	job, err := h.ingest.Submit(c.Request.Context(), middleware.CallerID(c), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to accept upload: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":        job.ID,
		"total_records": job.TotalRecords,
	})
}
