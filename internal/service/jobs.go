package service

import (
	"context"
	"time"

	"github.com/harborline/freightdesk/internal/domain"
)

// Page sizes for the polling endpoints.
const (
	PendingPageSize = 10
	HistoryPageSize = 50
)

// JobView is the read projection of a job returned to pollers. Progress
// is derived from the counters.
type JobView struct {
	ID               string              `json:"id"`
	Module           domain.Module       `json:"module"`
	SourceID         string              `json:"source_id"`
	Status           domain.JobStatus    `json:"status"`
	Progress         int                 `json:"progress"`
	TotalRecords     int                 `json:"total_records"`
	ProcessedRecords int                 `json:"processed_records"`
	CreatedRecords   int                 `json:"created_records"`
	DuplicateRecords int                 `json:"duplicate_records"`
	ErrorRecords     int                 `json:"error_records"`
	UploadErrors     domain.RowErrorList `json:"upload_errors"`
	Duplicates       domain.StringList   `json:"duplicates"`
	Result           *domain.JobResult   `json:"result,omitempty"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

func newJobView(job *domain.UploadJob) *JobView {
	return &JobView{
		ID:               job.ID,
		Module:           job.Module,
		SourceID:         job.SourceID,
		Status:           job.Status,
		Progress:         job.Progress(),
		TotalRecords:     job.TotalRecords,
		ProcessedRecords: job.ProcessedRecords,
		CreatedRecords:   job.CreatedRecords,
		DuplicateRecords: job.DuplicateRecords,
		ErrorRecords:     job.ErrorRecords,
		UploadErrors:     job.UploadErrors,
		Duplicates:       job.Duplicates,
		Result:           job.Result,
		StartedAt:        job.StartedAt,
		CompletedAt:      job.CompletedAt,
		CreatedAt:        job.CreatedAt,
	}
}

// JobQueryService provides read-only access to job state for the owning
// caller.
type JobQueryService struct {
	jobs    JobStore
	records RecordStore
}

// NewJobQueryService creates a new job query service.
func NewJobQueryService(jobs JobStore, records RecordStore) *JobQueryService {
	return &JobQueryService{jobs: jobs, records: records}
}

// GetJob returns one job view for its owner.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to fetch.
//   - callerID: identity of the requesting caller.
// Returns:
//   - *JobView: read projection of the job.
//   - error: domain.ErrNotFound for unknown IDs, domain.ErrForbidden when
//     the caller does not own the job.
func (s *JobQueryService) GetJob(ctx context.Context, jobID, callerID string) (*JobView, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return newJobView(job), nil
}

// ListPending returns the caller's jobs still pending or processing,
// newest first.
func (s *JobQueryService) ListPending(ctx context.Context, callerID string) ([]*JobView, error) {
	jobs, err := s.jobs.ListByOwner(ctx, callerID,
		[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing}, PendingPageSize)
	if err != nil {
		return nil, err
	}
	return toViews(jobs), nil
}

// ListHistory returns all jobs owned by the caller, newest first.
func (s *JobQueryService) ListHistory(ctx context.Context, callerID string) ([]*JobView, error) {
	jobs, err := s.jobs.ListByOwner(ctx, callerID, nil, HistoryPageSize)
	if err != nil {
		return nil, err
	}
	return toViews(jobs), nil
}

func toViews(jobs []domain.UploadJob) []*JobView {
	views := make([]*JobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, newJobView(&jobs[i]))
	}
	return views
}

// Stats summarizes store contents for the stats endpoint.
type Stats struct {
	Records map[domain.Module]int64    `json:"records"`
	Jobs    map[domain.JobStatus]int64 `json:"jobs"`
}

// GetStats returns record counts per module and job counts per status.
func (s *JobQueryService) GetStats(ctx context.Context) (*Stats, error) {
	records, err := s.records.CountByModule(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Records: records, Jobs: jobs}, nil
}
