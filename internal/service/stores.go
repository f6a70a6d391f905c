package service

import (
	"context"

	"github.com/harborline/freightdesk/internal/domain"
)

// JobStore is the persistence boundary for upload jobs. Implemented by
// repository.JobRepository.
type JobStore interface {
	Create(ctx context.Context, job *domain.UploadJob) error
	Save(ctx context.Context, job *domain.UploadJob) error
	GetByID(ctx context.Context, id string) (*domain.UploadJob, error)
	ListByOwner(ctx context.Context, ownerID string, statuses []domain.JobStatus, limit int) ([]domain.UploadJob, error)
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error)
}

// RecordStore is the persistence boundary for ingest records. Implemented
// by repository.RecordRepository.
type RecordStore interface {
	FindExistingKeys(ctx context.Context, module domain.Module, keys []string) ([]string, error)
	CreateMany(ctx context.Context, records []*domain.Record) error
	Create(ctx context.Context, record *domain.Record) error
	CountByModule(ctx context.Context) (map[domain.Module]int64, error)
}
