// Command ingest runs a spreadsheet import offline, without the API
// server: it parses a workbook, submits it through the ingestion
// pipeline against the configured database, waits for the job to reach a
// terminal state, and prints the summary.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/harborline/freightdesk/internal/config"
	"github.com/harborline/freightdesk/internal/logger"
	"github.com/harborline/freightdesk/internal/repository"
	"github.com/harborline/freightdesk/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "freightdesk-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	module := flag.String("module", "", "Invoicing module (trucking, shipchandler, agency, maritime)")
	file := flag.String("file", "", "Path to the xlsx workbook to import")
	owner := flag.String("owner", "cli", "Owner identity recorded on the job")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *module == "" || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	f, err := os.Open(*file)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open workbook")
	}
	rows, err := service.ParseWorkbook(f)
	f.Close()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse workbook")
	}

	jobRepo := repository.NewJobRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	dispatcher := service.NewDispatcher(1, 1, appLogger)
	dispatcher.Start()

	ingestService := service.NewIngestService(
		jobRepo,
		recordRepo,
		dispatcher,
		nil,
		appLogger,
		&service.IngestConfig{ChunkSize: cfg.Ingest.ChunkSize},
	)

	ctx := context.Background()
	job, err := ingestService.Submit(ctx, *owner, &service.SubmitRequest{
		Module:      *module,
		ManualEntry: true,
		Rows:        rows,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Submission rejected")
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
		"total_records":   job.TotalRecords,
	}).Info("Import submitted")

	// Drain the single worker, then read the terminal state.
	dispatcher.Shutdown()

	final, err := jobRepo.GetByID(ctx, job.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load job result")
	}

	fields := logger.Fields{
		"status":     final.Status,
		"created":    final.CreatedRecords,
		"duplicates": final.DuplicateRecords,
		"errors":     final.ErrorRecords,
	}
	if final.StartedAt != nil && final.CompletedAt != nil {
		fields["duration"] = final.CompletedAt.Sub(*final.StartedAt).Round(time.Millisecond).String()
	}
	appLogger.WithFields(fields).Info("Import finished")

	for _, e := range final.UploadErrors {
		appLogger.WithField("row", e.Row).Warn(e.Message)
	}
}
