package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/harborline/freightdesk/internal/domain"
	"gorm.io/gorm"
)

// RecordRepository handles persisted ingest record operations.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new RecordRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RecordRepository: repository instance bound to db.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// FindExistingKeys returns the subset of keys already persisted for a module.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - module: module whose records are checked.
//   - keys: candidate dedup keys.
// Returns:
//   - []string: keys that already exist in the store.
//   - error: non-nil if the query fails.
func (r *RecordRepository) FindExistingKeys(ctx context.Context, module domain.Module, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}
	var existing []string
	if err := r.db.WithContext(ctx).Model(&domain.Record{}).
		Where("module = ? AND dedup_key IN ?", module, keys).
		Pluck("dedup_key", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// CreateMany inserts a slice of records in one bulk write.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - records: records to persist.
// Returns:
//   - error: non-nil if the insert fails; partial-failure handling is the
//     caller's concern via Create fallback.
func (r *RecordRepository) CreateMany(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(records).Error
}

// Create inserts a single record.
func (r *RecordRepository) Create(ctx context.Context, record *domain.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CountByModule counts persisted records per module.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[domain.Module]int64: record count keyed by module.
//   - error: non-nil if the query fails.
func (r *RecordRepository) CountByModule(ctx context.Context) (map[domain.Module]int64, error) {
	type row struct {
		Module domain.Module
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&domain.Record{}).
		Select("module, count(*) as total").
		Group("module").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.Module]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Module] = rw.Total
	}
	return counts, nil
}

// IsDuplicateKey reports whether an insert failed on a uniqueness constraint.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// IsUnavailable reports whether an error means the store itself cannot be
// reached, as opposed to a row-level failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "database is locked")
}
