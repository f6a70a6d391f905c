package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{"empty job", 0, 0, 0},
		{"nothing processed", 0, 10, 0},
		{"half", 5, 10, 50},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"complete", 10, 10, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := &UploadJob{TotalRecords: tc.total, ProcessedRecords: tc.processed}
			if got := j.Progress(); got != tc.want {
				t.Fatalf("Progress() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestApplyProgressClampsAtTotal(t *testing.T) {
	j := &UploadJob{TotalRecords: 10}
	j.ApplyProgress(ProgressDelta{Processed: 8, Created: 8})
	j.ApplyProgress(ProgressDelta{Processed: 8, Created: 2})

	if j.ProcessedRecords != 10 {
		t.Fatalf("ProcessedRecords = %d, want clamped to 10", j.ProcessedRecords)
	}
	if j.CreatedRecords != 10 {
		t.Fatalf("CreatedRecords = %d, want 10", j.CreatedRecords)
	}
}

func TestMarkProcessingRunsOnce(t *testing.T) {
	j := &UploadJob{Status: JobStatusPending}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	j.MarkProcessing(first)
	j.MarkProcessing(second)

	if j.Status != JobStatusProcessing {
		t.Fatalf("status = %s, want processing", j.Status)
	}
	if j.StartedAt == nil || !j.StartedAt.Equal(first) {
		t.Fatalf("StartedAt = %v, want %v", j.StartedAt, first)
	}
}

func TestTerminalTransitionIsFinal(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	j := &UploadJob{Status: JobStatusProcessing}
	j.Complete(now, "done", []string{"a"})
	j.Fail(later, "should not apply")

	if j.Status != JobStatusCompleted {
		t.Fatalf("status = %s, completed jobs must not fail afterwards", j.Status)
	}
	if !j.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt = %v, want the original %v", j.CompletedAt, now)
	}
	if j.Result == nil || !j.Result.Success {
		t.Fatalf("result = %+v", j.Result)
	}

	j = &UploadJob{Status: JobStatusProcessing}
	j.Fail(now, "broken")
	j.Complete(later, "should not apply", nil)

	if j.Status != JobStatusFailed {
		t.Fatalf("status = %s, failed jobs must not complete afterwards", j.Status)
	}
	if j.Result.Success || j.Result.Message != "broken" {
		t.Fatalf("result = %+v", j.Result)
	}
}

func TestRecordDuplicatesCapsListNotCounter(t *testing.T) {
	keys := make([]string, MaxDuplicateKeys+25)
	for i := range keys {
		keys[i] = fmt.Sprintf("KEY-%03d", i)
	}

	j := &UploadJob{}
	j.RecordDuplicates(keys)

	if j.DuplicateRecords != len(keys) {
		t.Fatalf("DuplicateRecords = %d, want the uncapped %d", j.DuplicateRecords, len(keys))
	}
	if len(j.Duplicates) != MaxDuplicateKeys {
		t.Fatalf("len(Duplicates) = %d, want cap %d", len(j.Duplicates), MaxDuplicateKeys)
	}
	if j.Duplicates[0] != "KEY-000" {
		t.Fatalf("Duplicates[0] = %s, retention must keep the earliest entries", j.Duplicates[0])
	}
}

func TestAppendUploadErrorsDropsOverflow(t *testing.T) {
	j := &UploadJob{}
	for i := 0; i < MaxUploadErrors+10; i++ {
		j.AppendUploadErrors(RowError{Row: i, Message: "bad row"})
	}

	if len(j.UploadErrors) != MaxUploadErrors {
		t.Fatalf("len(UploadErrors) = %d, want cap %d", len(j.UploadErrors), MaxUploadErrors)
	}
	if j.UploadErrors[MaxUploadErrors-1].Row != MaxUploadErrors-1 {
		t.Fatal("overflow entries must be dropped, not rotated in")
	}
}

func TestCompleteCapsResultIDs(t *testing.T) {
	ids := make([]string, MaxResultIDs+5)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}

	j := &UploadJob{Status: JobStatusProcessing}
	j.Complete(time.Now().UTC(), "done", ids)

	if len(j.Result.CreatedIDs) != MaxResultIDs {
		t.Fatalf("len(CreatedIDs) = %d, want cap %d", len(j.Result.CreatedIDs), MaxResultIDs)
	}
}

func TestParseModule(t *testing.T) {
	tests := []struct {
		in      string
		want    Module
		wantErr bool
	}{
		{"trucking", ModuleTrucking, false},
		{" Maritime ", ModuleMaritime, false},
		{"SHIPCHANDLER", ModuleShipchandler, false},
		{"agency", ModuleAgency, false},
		{"warehouse", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseModule(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseModule(%q) expected an error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModule(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseModule(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}
