package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harborline/freightdesk/internal/api/middleware"
	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/logger"
	"github.com/harborline/freightdesk/internal/service"
	"github.com/harborline/freightdesk/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportHandler handles spreadsheet import uploads: the workbook is
// archived, parsed into raw rows, and submitted as a bulk-ingestion job
// whose source ID is the generated import ID.
type ImportHandler struct {
	ingest  *service.IngestService
	archive storage.ImportArchive
}

// NewImportHandler creates a new import handler.
// Parameters:
//   - ingest: ingest service instance.
//   - archive: import archive; may be nil to skip archiving.
// Returns:
//   - *ImportHandler: initialized handler.
func NewImportHandler(ingest *service.IngestService, archive storage.ImportArchive) *ImportHandler {
	return &ImportHandler{ingest: ingest, archive: archive}
}

// Upload handles POST /api/v1/imports/:module with a multipart "file"
// field containing an xlsx workbook.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) Upload(c *gin.Context) {
	module := c.Param("module")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field: " + err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file: " + err.Error()})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file: " + err.Error()})
		return
	}

	rows, err := service.ParseWorkbook(bytes.NewReader(content))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	importID := uuid.NewString()
	ctx := logger.WithField(c.Request.Context(), logger.FieldImportID, importID)

	if h.archive != nil {
		key := fmt.Sprintf("imports/%s/%s.xlsx", module, importID)
		if err := h.archive.Upload(ctx, key, bytes.NewReader(content), int64(len(content)), xlsxContentType); err != nil {
			// The archive is provenance, not the source of truth; a failed
			// upload is logged and the import proceeds.
			logger.FromContext(ctx).WithError(err).Warn("Failed to archive import file")
		}
	}

	job, err := h.ingest.Submit(ctx, middleware.CallerID(c), &service.SubmitRequest{
		Module:   module,
		SourceID: importID,
		Rows:     rows,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to accept import: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":        job.ID,
		"import_id":     importID,
		"total_records": job.TotalRecords,
	})
}
