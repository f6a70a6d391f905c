package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborline/freightdesk/internal/api"
	"github.com/harborline/freightdesk/internal/config"
	"github.com/harborline/freightdesk/internal/logger"
	"github.com/harborline/freightdesk/internal/repository"
	"github.com/harborline/freightdesk/internal/service"
	"github.com/harborline/freightdesk/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "freightdesk",
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})
	logger.SetDefaultLogger(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	// Import archive is optional; without it imports are parsed but the
	// raw workbook is not retained.
	var archive storage.ImportArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize import archive")
		}
		if err := s3Archive.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		archive = s3Archive
	}

	dispatcher := service.NewDispatcher(cfg.Ingest.Workers, cfg.Ingest.QueueSize, appLogger)
	dispatcher.Start()

	notifier := service.NewNotifier(&service.NotifierConfig{
		URL:        cfg.Notify.WebhookURL,
		Timeout:    cfg.Notify.Timeout,
		RetryCount: cfg.Notify.RetryCount,
	})

	ingestService := service.NewIngestService(
		jobRepo,
		recordRepo,
		dispatcher,
		notifier,
		appLogger,
		&service.IngestConfig{ChunkSize: cfg.Ingest.ChunkSize},
	)
	queryService := service.NewJobQueryService(jobRepo, recordRepo)

	router := api.SetupRouter(ingestService, queryService, archive, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	// Let in-flight pipelines reach a terminal state before exit.
	dispatcher.Shutdown()

	appLogger.Info("Server exited")
}
