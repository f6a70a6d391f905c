package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// JobStatus represents the lifecycle state of an upload job.
// Transitions are pending -> processing -> {completed | failed}; the
// terminal states have no outgoing transitions.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Caps on the embedded lists so the persisted job row stays bounded.
// Callers needing the full created-ID list page the record store directly.
const (
	MaxUploadErrors  = 100
	MaxDuplicateKeys = 100
	MaxResultIDs     = 100
)

// RowError records a single row's failure to persist. Row is the index of
// the row within the original submission.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RowErrorList is a JSON-serialized column of row errors.
type RowErrorList []RowError

func (l RowErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = RowErrorList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *RowErrorList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// StringList is a JSON-serialized column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// JobResult is the terminal summary written exactly once when a job
// completes or fails.
type JobResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	CreatedIDs []string `json:"created_ids"`
}

func (r JobResult) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	return string(b), err
}

func (r *JobResult) Scan(src interface{}) error {
	return scanJSON(src, r)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// UploadJob is the tracked unit of asynchronous bulk-ingestion work.
// It is created in pending state within the submitting request and then
// mutated exclusively by the deferred pipeline that owns it.
type UploadJob struct {
	ID       string `gorm:"type:text;primaryKey" json:"id"`
	Module   Module `gorm:"type:text;not null;index" json:"module"`
	OwnerID  string `gorm:"type:text;not null;index" json:"owner_id"`
	SourceID string `gorm:"type:text;not null" json:"source_id"`

	Status JobStatus `gorm:"type:text;default:pending;index" json:"status"`

	TotalRecords     int `gorm:"default:0" json:"total_records"`
	ProcessedRecords int `gorm:"default:0" json:"processed_records"`
	CreatedRecords   int `gorm:"default:0" json:"created_records"`
	DuplicateRecords int `gorm:"default:0" json:"duplicate_records"`
	ErrorRecords     int `gorm:"default:0" json:"error_records"`

	UploadErrors RowErrorList `gorm:"type:text" json:"upload_errors"`
	Duplicates   StringList   `gorm:"type:text" json:"duplicates"`
	Result       *JobResult   `gorm:"type:text" json:"result,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for UploadJob.
func (UploadJob) TableName() string {
	return "upload_jobs"
}

// Terminal reports whether the job reached a terminal state.
func (j *UploadJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Progress derives the completion percentage from the counters.
// Returns 0 when TotalRecords is 0.
func (j *UploadJob) Progress() int {
	if j.TotalRecords == 0 {
		return 0
	}
	return int(math.Round(float64(j.ProcessedRecords) / float64(j.TotalRecords) * 100))
}

// MarkProcessing transitions the job into processing and records
// StartedAt. It is a no-op after the first call.
func (j *UploadJob) MarkProcessing(now time.Time) {
	if j.Status != JobStatusPending {
		return
	}
	j.Status = JobStatusProcessing
	j.StartedAt = &now
}

// ProgressDelta is one chunk's worth of counter movement.
type ProgressDelta struct {
	Processed int
	Created   int
	Errors    int
}

// ApplyProgress advances the counters by one delta. Counters only ever
// move forward, so a poller never observes them decrease.
func (j *UploadJob) ApplyProgress(d ProgressDelta) {
	j.ProcessedRecords += d.Processed
	j.CreatedRecords += d.Created
	j.ErrorRecords += d.Errors
	if j.ProcessedRecords > j.TotalRecords {
		j.ProcessedRecords = j.TotalRecords
	}
}

// RecordDuplicates stores the duplicate keys found up front, capped, and
// sets the duplicate counter to the full uncapped count.
func (j *UploadJob) RecordDuplicates(keys []string) {
	j.DuplicateRecords = len(keys)
	if len(keys) > MaxDuplicateKeys {
		keys = keys[:MaxDuplicateKeys]
	}
	j.Duplicates = append(StringList{}, keys...)
}

// AppendUploadErrors appends row errors up to the retention cap; overflow
// entries are dropped.
func (j *UploadJob) AppendUploadErrors(errs ...RowError) {
	for _, e := range errs {
		if len(j.UploadErrors) >= MaxUploadErrors {
			return
		}
		j.UploadErrors = append(j.UploadErrors, e)
	}
}

// Complete transitions the job into completed with a result summary.
// CompletedAt is set exactly once, on the single terminal transition.
func (j *UploadJob) Complete(now time.Time, message string, createdIDs []string) {
	if j.Terminal() {
		return
	}
	if len(createdIDs) > MaxResultIDs {
		createdIDs = createdIDs[:MaxResultIDs]
	}
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.Result = &JobResult{Success: true, Message: message, CreatedIDs: append([]string{}, createdIDs...)}
}

// Fail transitions the job into failed with a result message.
func (j *UploadJob) Fail(now time.Time, message string) {
	if j.Terminal() {
		return
	}
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Result = &JobResult{Success: false, Message: message, CreatedIDs: []string{}}
}
