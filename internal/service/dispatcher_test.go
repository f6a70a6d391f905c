package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/harborline/freightdesk/internal/logger"
)

func TestDispatcherRunsAllTasks(t *testing.T) {
	log := logger.New(&logger.Config{Level: "error", Format: "text"})
	d := NewDispatcher(4, 32, log)
	d.Start()

	var ran int64
	for i := 0; i < 20; i++ {
		d.Enqueue(func(context.Context) {
			atomic.AddInt64(&ran, 1)
		})
	}

	// Shutdown drains the backlog before returning.
	d.Shutdown()

	if got := atomic.LoadInt64(&ran); got != 20 {
		t.Fatalf("ran %d tasks, want 20", got)
	}
}

func TestDispatcherClampsWorkerCount(t *testing.T) {
	log := logger.New(&logger.Config{Level: "error", Format: "text"})
	d := NewDispatcher(0, 0, log)
	d.Start()

	done := make(chan struct{})
	d.Enqueue(func(context.Context) { close(done) })
	<-done
	d.Shutdown()
}
