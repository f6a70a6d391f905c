package repository

import (
	"context"
	"errors"

	"github.com/harborline/freightdesk/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles upload job persistence.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new job.
func (r *JobRepository) Create(ctx context.Context, job *domain.UploadJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Save writes the full job state back to the store. The deferred pipeline
// is the sole writer to a job, so a whole-row save cannot race.
func (r *JobRepository) Save(ctx context.Context, job *domain.UploadJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// GetByID retrieves a job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.UploadJob: job if found.
//   - error: domain.ErrNotFound when no such job, or the query error.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.UploadJob, error) {
	var job domain.UploadJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListByOwner retrieves jobs owned by a caller, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning caller identity.
//   - statuses: statuses to include; empty means all.
//   - limit: maximum number of jobs to return.
// Returns:
//   - []domain.UploadJob: matching jobs ordered by creation time descending.
//   - error: non-nil if the query fails.
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string, statuses []domain.JobStatus, limit int) ([]domain.UploadJob, error) {
	var jobs []domain.UploadJob
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountByStatus counts jobs per status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[domain.JobStatus]int64: job count keyed by status.
//   - error: non-nil if the query fails.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	type row struct {
		Status domain.JobStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&domain.UploadJob{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.JobStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}
