package domain

import "errors"

// Error taxonomy for the ingestion engine. Row-level insert failures are
// recorded as RowError data on the job, never surfaced as Go errors.
var (
	// ErrInvalidRequest rejects a malformed submission synchronously;
	// no job is created.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned by query-time lookups for unknown job IDs.
	ErrNotFound = errors.New("job not found")

	// ErrForbidden is returned when a caller reads a job it does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable marks a transient infrastructure fault during a
	// chunk write. The pipeline records the chunk as failed and continues.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
