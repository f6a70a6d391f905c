package service

import (
	"context"
	"fmt"

	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/repository"
)

// InsertChunkSize is the fixed number of shaped records written to the
// store in one round-trip.
const InsertChunkSize = 100

// BatchResult reports one chunk's outcome: the IDs that persisted plus
// one error per failed row. Row indexes are offset plus position within
// the chunk, relative to the insert sequence handed in by the caller,
// which remaps them to submission row indexes.
type BatchResult struct {
	CreatedIDs []string
	Errors     []domain.RowError
}

// BatchInserter writes shaped records to the record store in bounded
// chunks, tolerating per-row failures.
type BatchInserter struct {
	records RecordStore
}

// NewBatchInserter creates a batch inserter over a record store.
func NewBatchInserter(records RecordStore) *BatchInserter {
	return &BatchInserter{records: records}
}

// InsertBatch persists one chunk of shaped records. A failure on one row
// never aborts the rows before or after it: the bulk write is attempted
// first, and on failure every row is retried individually so the failing
// rows can be isolated. When the store itself is unreachable the whole
// chunk is reported as failed, one synthetic error per row, and the
// caller moves on to the next chunk.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - chunk: shaped records, at most InsertChunkSize of them.
//   - offset: the chunk's starting row index within the submission.
// Returns:
//   - BatchResult: created IDs and row-level errors for this chunk.
func (b *BatchInserter) InsertBatch(ctx context.Context, chunk []*domain.Record, offset int) BatchResult {
	result := BatchResult{}
	if len(chunk) == 0 {
		return result
	}

	err := b.records.CreateMany(ctx, chunk)
	if err == nil {
		for _, rec := range chunk {
			result.CreatedIDs = append(result.CreatedIDs, rec.ID)
		}
		return result
	}

	if repository.IsUnavailable(err) {
		for i := range chunk {
			result.Errors = append(result.Errors, domain.RowError{
				Row:     offset + i,
				Message: fmt.Sprintf("%s: %v", domain.ErrStoreUnavailable, err),
			})
		}
		return result
	}

	// Bulk write rejected; retry row by row to isolate the failures.
	for i, rec := range chunk {
		rowErr := b.records.Create(ctx, rec)
		if rowErr == nil {
			result.CreatedIDs = append(result.CreatedIDs, rec.ID)
			continue
		}
		if repository.IsUnavailable(rowErr) {
			result.Errors = append(result.Errors, domain.RowError{
				Row:     offset + i,
				Message: fmt.Sprintf("%s: %v", domain.ErrStoreUnavailable, rowErr),
			})
			continue
		}
		if repository.IsDuplicateKey(rowErr) {
			// A concurrent job won the race on this key after our dedup
			// query ran. The row fails like any other insert error.
			result.Errors = append(result.Errors, domain.RowError{
				Row:     offset + i,
				Message: fmt.Sprintf("record already exists: %v", rowErr),
			})
			continue
		}
		result.Errors = append(result.Errors, domain.RowError{
			Row:     offset + i,
			Message: rowErr.Error(),
		})
	}
	return result
}
