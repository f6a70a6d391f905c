package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harborline/freightdesk/internal/domain"
)

func seedJob(t *testing.T, store *fakeJobStore, job *domain.UploadJob) {
	t.Helper()
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func TestGetJob(t *testing.T) {
	jobs := newFakeJobStore()
	seedJob(t, jobs, &domain.UploadJob{
		ID:               "job-1",
		Module:           domain.ModuleTrucking,
		OwnerID:          "user-1",
		Status:           domain.JobStatusProcessing,
		TotalRecords:     200,
		ProcessedRecords: 150,
		CreatedRecords:   140,
		ErrorRecords:     10,
	})
	svc := NewJobQueryService(jobs, newFakeRecordStore())

	t.Run("owner sees progress", func(t *testing.T) {
		view, err := svc.GetJob(context.Background(), "job-1", "user-1")
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if view.Progress != 75 {
			t.Fatalf("progress = %d, want 75", view.Progress)
		}
		if view.Status != domain.JobStatusProcessing {
			t.Fatalf("status = %s", view.Status)
		}
	})

	t.Run("other caller is forbidden", func(t *testing.T) {
		_, err := svc.GetJob(context.Background(), "job-1", "user-2")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.GetJob(context.Background(), "missing", "user-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestListPendingFiltersAndPages(t *testing.T) {
	jobs := newFakeJobStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// More active jobs than one page, plus terminal and foreign jobs that
	// must never show up.
	for i := 0; i < PendingPageSize+3; i++ {
		status := domain.JobStatusPending
		if i%2 == 0 {
			status = domain.JobStatusProcessing
		}
		seedJob(t, jobs, &domain.UploadJob{
			ID:        fmt.Sprintf("active-%02d", i),
			OwnerID:   "user-1",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	seedJob(t, jobs, &domain.UploadJob{ID: "done", OwnerID: "user-1", Status: domain.JobStatusCompleted, CreatedAt: base.Add(time.Hour)})
	seedJob(t, jobs, &domain.UploadJob{ID: "foreign", OwnerID: "user-2", Status: domain.JobStatusPending, CreatedAt: base.Add(time.Hour)})

	svc := NewJobQueryService(jobs, newFakeRecordStore())
	views, err := svc.ListPending(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}

	if len(views) != PendingPageSize {
		t.Fatalf("got %d jobs, want page size %d", len(views), PendingPageSize)
	}
	for _, v := range views {
		if v.Status != domain.JobStatusPending && v.Status != domain.JobStatusProcessing {
			t.Fatalf("terminal job %s leaked into the pending list", v.ID)
		}
	}
	// Newest first.
	if views[0].ID != fmt.Sprintf("active-%02d", PendingPageSize+2) {
		t.Fatalf("first entry = %s, want the newest active job", views[0].ID)
	}
}

func TestListHistoryIncludesTerminalJobs(t *testing.T) {
	jobs := newFakeJobStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedJob(t, jobs, &domain.UploadJob{ID: "a", OwnerID: "user-1", Status: domain.JobStatusCompleted, CreatedAt: base})
	seedJob(t, jobs, &domain.UploadJob{ID: "b", OwnerID: "user-1", Status: domain.JobStatusFailed, CreatedAt: base.Add(time.Minute)})
	seedJob(t, jobs, &domain.UploadJob{ID: "c", OwnerID: "user-1", Status: domain.JobStatusPending, CreatedAt: base.Add(2 * time.Minute)})

	svc := NewJobQueryService(jobs, newFakeRecordStore())
	views, err := svc.ListHistory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}

	if len(views) != 3 {
		t.Fatalf("got %d jobs, want 3", len(views))
	}
	if views[0].ID != "c" || views[2].ID != "a" {
		t.Fatalf("history not newest first: %s, %s, %s", views[0].ID, views[1].ID, views[2].ID)
	}
}

func TestGetStats(t *testing.T) {
	jobs := newFakeJobStore()
	records := newFakeRecordStore()
	seedJob(t, jobs, &domain.UploadJob{ID: "a", OwnerID: "user-1", Status: domain.JobStatusCompleted})
	seedJob(t, jobs, &domain.UploadJob{ID: "b", OwnerID: "user-1", Status: domain.JobStatusCompleted})
	seedJob(t, jobs, &domain.UploadJob{ID: "c", OwnerID: "user-2", Status: domain.JobStatusFailed})

	shaper := ShaperFor(domain.ModuleTrucking)
	for _, ref := range []string{"TCNU0000001", "TCNU0000002"} {
		if err := records.Create(context.Background(), shaper.Shape(truckRow(ref), "imp-1", "user-1")); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	svc := NewJobQueryService(jobs, records)
	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.Jobs[domain.JobStatusCompleted] != 2 || stats.Jobs[domain.JobStatusFailed] != 1 {
		t.Fatalf("job counts = %v", stats.Jobs)
	}
	if stats.Records[domain.ModuleTrucking] != 2 {
		t.Fatalf("record counts = %v", stats.Records)
	}
}
