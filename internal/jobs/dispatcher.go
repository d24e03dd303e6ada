// Package jobs runs review work in the background for webhook server mode.
// Events are queued and processed by a fixed pool of workers so a burst of
// "/review" commands cannot stampede the model backend.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mkraev/diffsentry/internal/core"
)

// dispatcher implements core.JobDispatcher with a bounded queue and a fixed
// worker pool.
type dispatcher struct {
	reviewJob  core.Job
	jobQueue   chan *core.ReviewEvent
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher starts a worker pool of maxWorkers goroutines. If maxWorkers
// is 0 or negative, it defaults to 1.
func NewDispatcher(reviewJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		reviewJob:  reviewJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.ReviewEvent, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker drains the queue until it is closed by Stop.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

func (d *dispatcher) processEvent(workerID int, event *core.ReviewEvent) {
	d.logger.Info("worker processing review",
		"worker_id", workerID,
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
	)

	if err := d.reviewJob.Run(context.Background(), event); err != nil {
		d.logger.Error("review job failed",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"error", err,
		)
	}
}

// Dispatch queues a review event. It never blocks: a full queue is reported
// to the caller as backpressure instead of stalling the webhook handler.
func (d *dispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	d.logger.Info("queuing review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review job")
	}
}

// Stop closes the queue and waits for in-flight reviews to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
