package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/logger"
)

// IngestService owns the end-to-end bulk-ingestion flow: it validates a
// submission, creates the job, answers the caller immediately, and drives
// the deferred pipeline (dedup, batch insert, finalize) on a dispatcher
// worker.
type IngestService struct {
	jobs       JobStore
	records    RecordStore
	inserter   *BatchInserter
	dispatcher *Dispatcher
	notifier   *Notifier
	logger     *logger.Logger
	chunkSize  int
}

// IngestConfig holds configuration for the ingest service.
type IngestConfig struct {
	ChunkSize int
}

// NewIngestService creates a new ingest service.
// Parameters:
//   - jobs: job store.
//   - records: record store.
//   - dispatcher: deferred-task dispatcher; must be started by the caller.
//   - notifier: completion webhook notifier; may be nil.
//   - log: base logger.
//   - cfg: service configuration; nil uses defaults.
// Returns:
//   - *IngestService: initialized service.
func NewIngestService(
	jobs JobStore,
	records RecordStore,
	dispatcher *Dispatcher,
	notifier *Notifier,
	log *logger.Logger,
	cfg *IngestConfig,
) *IngestService {
	chunkSize := InsertChunkSize
	if cfg != nil && cfg.ChunkSize > 0 {
		chunkSize = cfg.ChunkSize
	}
	return &IngestService{
		jobs:       jobs,
		records:    records,
		inserter:   NewBatchInserter(records),
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     log,
		chunkSize:  chunkSize,
	}
}

// SubmitRequest is a bulk-ingestion submission.
type SubmitRequest struct {
	Module      string          `json:"module" binding:"required"`
	SourceID    string          `json:"source_id"`
	ManualEntry bool            `json:"manual_entry"`
	Rows        []domain.RawRow `json:"rows"`
}

// Submit validates a submission, persists a pending job, schedules the
// deferred pipeline, and returns the job synchronously. The caller is
// never blocked on pipeline completion; it polls the job by ID.
// Parameters:
//   - ctx: request context; applies only to job creation.
//   - ownerID: submitting caller identity.
//   - req: the submission.
// Returns:
//   - *domain.UploadJob: the created job in pending state.
//   - error: domain.ErrInvalidRequest-wrapped for malformed input.
func (s *IngestService) Submit(ctx context.Context, ownerID string, req *SubmitRequest) (*domain.UploadJob, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: missing caller identity", domain.ErrInvalidRequest)
	}

	module, err := domain.ParseModule(req.Module)
	if err != nil {
		return nil, err
	}

	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: rows must be a non-empty list", domain.ErrInvalidRequest)
	}

	sourceID := strings.TrimSpace(req.SourceID)
	if req.ManualEntry {
		// Manual entry has no originating import; stamp a synthetic one.
		if sourceID == "" {
			sourceID = "manual-" + uuid.NewString()
		}
	} else if sourceID == "" {
		return nil, fmt.Errorf("%w: source_id is required unless manual_entry is set", domain.ErrInvalidRequest)
	}

	job := &domain.UploadJob{
		ID:           uuid.NewString(),
		Module:       module,
		OwnerID:      ownerID,
		SourceID:     sourceID,
		Status:       domain.JobStatusPending,
		TotalRecords: len(req.Rows),
		UploadErrors: domain.RowErrorList{},
		Duplicates:   domain.StringList{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.WithFields(logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldModule:  module,
		logger.FieldOwnerID: ownerID,
		"total_records":     job.TotalRecords,
	}).Info("Upload job accepted")

	// Enqueueing before the return is safe: the pipeline reloads the job
	// by ID and never touches the struct handed back to the caller, so
	// the caller always gets the pending snapshot without blocking.
	jobID := job.ID
	rows := req.Rows
	s.dispatcher.Enqueue(func(taskCtx context.Context) {
		s.runPipeline(taskCtx, jobID, module, sourceID, ownerID, rows)
	})

	return job, nil
}

// runPipeline executes the deferred pipeline for one job. It is the sole
// writer to the job row from here to the terminal state.
func (s *IngestService) runPipeline(ctx context.Context, jobID string, module domain.Module, sourceID, ownerID string, rows []domain.RawRow) {
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldJobID:  jobID,
		logger.FieldModule: module,
	})
	log := logger.FromContext(ctx)

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		log.WithError(err).Error("Pipeline could not load its job")
		return
	}

	// Any fault outside the per-chunk insert terminates the job as failed.
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Pipeline panicked")
			s.failJob(ctx, job, fmt.Sprintf("upload processing failed unexpectedly: %v", r))
		}
	}()

	job.MarkProcessing(time.Now().UTC())
	if err := s.jobs.Save(ctx, job); err != nil {
		log.WithError(err).Error("Failed to mark job processing")
		return
	}

	duplicateRows, duplicateKeys, err := s.detectDuplicates(ctx, module, rows)
	if err != nil {
		log.WithError(err).Error("Duplicate detection failed")
		s.failJob(ctx, job, fmt.Sprintf("duplicate detection failed: %v", err))
		return
	}

	job.RecordDuplicates(duplicateKeys)

	// Rows not flagged as duplicates proceed to insertion, keeping their
	// original submission indexes for error reporting.
	shaper := ShaperFor(module)
	type shapedRow struct {
		record *domain.Record
		row    int
	}
	var remaining []shapedRow
	for i, row := range rows {
		if duplicateRows[i] {
			continue
		}
		remaining = append(remaining, shapedRow{record: shaper.Shape(row, sourceID, ownerID), row: i})
	}

	if len(remaining) == 0 {
		// Every row was a duplicate: a legitimate no-op outcome.
		job.ApplyProgress(domain.ProgressDelta{Processed: job.TotalRecords})
		job.Complete(time.Now().UTC(),
			fmt.Sprintf("no new records: all %d rows were duplicates", job.DuplicateRecords), nil)
		if err := s.jobs.Save(ctx, job); err != nil {
			log.WithError(err).Error("Failed to finalize job")
			return
		}
		log.WithField("duplicates", job.DuplicateRecords).Info("Upload job completed with no new records")
		s.notify(ctx, job)
		return
	}

	// Duplicates are counted as processed up front so progress reflects
	// them before the first chunk lands.
	job.ApplyProgress(domain.ProgressDelta{Processed: len(duplicateKeys)})
	if err := s.jobs.Save(ctx, job); err != nil {
		log.WithError(err).Error("Failed to record duplicate detection results")
		s.failJob(ctx, job, fmt.Sprintf("failed to record progress: %v", err))
		return
	}

	var createdIDs []string
	for start := 0; start < len(remaining); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(remaining) {
			end = len(remaining)
		}
		chunk := make([]*domain.Record, 0, end-start)
		for _, sr := range remaining[start:end] {
			chunk = append(chunk, sr.record)
		}

		result := s.inserter.InsertBatch(ctx, chunk, start)
		createdIDs = append(createdIDs, result.CreatedIDs...)

		// Map chunk-relative error rows back to submission row indexes.
		rowErrs := make([]domain.RowError, 0, len(result.Errors))
		for _, e := range result.Errors {
			rowErrs = append(rowErrs, domain.RowError{Row: remaining[e.Row].row, Message: e.Message})
		}

		job.ApplyProgress(domain.ProgressDelta{
			Processed: end - start,
			Created:   len(result.CreatedIDs),
			Errors:    len(result.Errors),
		})
		job.AppendUploadErrors(rowErrs...)

		// Progress is persisted only after the chunk fully completes, so
		// a poller never observes a half-written chunk.
		if err := s.jobs.Save(ctx, job); err != nil {
			log.WithError(err).Error("Failed to persist chunk progress")
			s.failJob(ctx, job, fmt.Sprintf("failed to record progress: %v", err))
			return
		}

		log.WithFields(logger.Fields{
			"processed": job.ProcessedRecords,
			"created":   job.CreatedRecords,
			"errors":    job.ErrorRecords,
		}).Debug("Chunk processed")
	}

	s.finalize(ctx, job, createdIDs)
}

// detectDuplicates runs both dedup tiers over the submission. It returns
// the set of duplicate row indexes and, in row order, the key carried by
// each duplicate row. Rows without a derivable key never appear in either.
func (s *IngestService) detectDuplicates(ctx context.Context, module domain.Module, rows []domain.RawRow) (map[int]bool, []string, error) {
	strategy := StrategyFor(module)

	keys := make([]string, len(rows))
	hasKey := make([]bool, len(rows))
	var uniqueKeys []string
	firstSeen := make(map[string]int, len(rows))
	duplicateRows := make(map[int]bool)

	for i, row := range rows {
		key, ok := strategy.Key(row)
		if !ok {
			continue
		}
		keys[i] = key
		hasKey[i] = true
		if _, seen := firstSeen[key]; seen {
			// Within-batch duplicate: first occurrence wins.
			duplicateRows[i] = true
			continue
		}
		firstSeen[key] = i
		uniqueKeys = append(uniqueKeys, key)
	}

	existing, err := s.records.FindExistingKeys(ctx, module, uniqueKeys)
	if err != nil {
		return nil, nil, err
	}
	existingSet := make(map[string]bool, len(existing))
	for _, k := range existing {
		existingSet[k] = true
	}

	// A key already in the store makes every occurrence a duplicate,
	// including the first one within the batch.
	var duplicateKeys []string
	for i := range rows {
		if hasKey[i] && existingSet[keys[i]] {
			duplicateRows[i] = true
		}
		if duplicateRows[i] {
			duplicateKeys = append(duplicateKeys, keys[i])
		}
	}

	return duplicateRows, duplicateKeys, nil
}

// finalize applies the terminal-state rule: at least one created record is
// success, and so is an all-duplicate no-op; zero created with errors is
// failure. Partial success is success.
func (s *IngestService) finalize(ctx context.Context, job *domain.UploadJob, createdIDs []string) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	if job.CreatedRecords == 0 && job.ErrorRecords > 0 {
		job.Fail(now, fmt.Sprintf("no records created: all %d rows failed", job.ErrorRecords))
	} else {
		job.Complete(now, fmt.Sprintf("created %d of %d records (%d duplicates, %d errors)",
			job.CreatedRecords, job.TotalRecords, job.DuplicateRecords, job.ErrorRecords), createdIDs)
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		log.WithError(err).Error("Failed to finalize job")
		return
	}

	log.WithFields(logger.Fields{
		"status":     job.Status,
		"created":    job.CreatedRecords,
		"duplicates": job.DuplicateRecords,
		"errors":     job.ErrorRecords,
	}).Info("Upload job finished")

	s.notify(ctx, job)
}

// failJob moves a job straight to failed with a synthetic result message.
func (s *IngestService) failJob(ctx context.Context, job *domain.UploadJob, message string) {
	job.Fail(time.Now().UTC(), message)
	if err := s.jobs.Save(ctx, job); err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to persist job failure")
		return
	}
	s.notify(ctx, job)
}

func (s *IngestService) notify(ctx context.Context, job *domain.UploadJob) {
	if s.notifier == nil {
		return
	}
	s.notifier.JobFinished(ctx, job)
}
