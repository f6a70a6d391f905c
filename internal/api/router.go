package api

import (
	"github.com/gin-gonic/gin"
	"github.com/harborline/freightdesk/internal/api/handler"
	"github.com/harborline/freightdesk/internal/api/middleware"
	"github.com/harborline/freightdesk/internal/config"
	"github.com/harborline/freightdesk/internal/service"
	"github.com/harborline/freightdesk/internal/storage"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	ingestService *service.IngestService,
	queryService *service.JobQueryService,
	archive storage.ImportArchive,
	cfg *config.Config,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	ingestHandler := handler.NewIngestHandler(ingestService)
	importHandler := handler.NewImportHandler(ingestService, archive)
	jobHandler := handler.NewJobHandler(queryService)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())
	{
		// Bulk ingestion
		v1.POST("/ingest", ingestHandler.Submit)
		v1.POST("/imports/:module", importHandler.Upload)

		// Job polling
		v1.GET("/jobs/pending", jobHandler.ListPending)
		v1.GET("/jobs/history", jobHandler.ListHistory)
		v1.GET("/jobs/:id", jobHandler.GetJob)

		// Stats
		v1.GET("/stats", jobHandler.GetStats)
	}

	return r
}
