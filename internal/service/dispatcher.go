package service

import (
	"context"
	"sync"

	"github.com/harborline/freightdesk/internal/logger"
)

// Task is a unit of deferred work executed by the dispatcher with no
// caller attached.
type Task func(ctx context.Context)

// Dispatcher runs deferred pipeline tasks on a fixed pool of workers.
// Submit returns to the caller before its task runs; the task carries no
// reference back to the original request context.
type Dispatcher struct {
	tasks   chan Task
	workers int
	wg      sync.WaitGroup
	log     *logger.Logger
}

// NewDispatcher creates a dispatcher with the given worker count.
// Parameters:
//   - workers: number of concurrent pipeline workers; minimum 1.
//   - queueSize: buffered task backlog; minimum 1.
//   - log: logger for worker lifecycle events.
// Returns:
//   - *Dispatcher: dispatcher ready to Start.
func NewDispatcher(workers, queueSize int, log *logger.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Enqueue schedules a task for deferred execution. Blocks only when the
// backlog is full.
func (d *Dispatcher) Enqueue(task Task) {
	d.tasks <- task
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.log.WithField("worker", id).Debug("pipeline worker started")

	for task := range d.tasks {
		// Each task owns a fresh background context: the submitting
		// request has already been answered by the time this runs.
		task(context.Background())
	}

	d.log.WithField("worker", id).Debug("pipeline worker stopped")
}

// Shutdown stops accepting tasks and waits for in-flight pipelines to
// reach their terminal state.
func (d *Dispatcher) Shutdown() {
	close(d.tasks)
	d.wg.Wait()
}
