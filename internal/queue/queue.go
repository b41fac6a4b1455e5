// Package queue implements the durable workflow job queue: at-least-once
// delivery of "execute this workflow now" items to a bounded set of
// concurrent handlers, with exponential backoff on delivery failure.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// ErrStopped is returned by Enqueue once the queue no longer accepts jobs.
var ErrStopped = errors.New("queue is stopped")

// Handler executes one delivered job. A returned error is a delivery
// failure: the queue reschedules the job with backoff until its attempts are
// exhausted. A handler that wants to record a failed workflow without a
// redelivery simply returns nil.
type Handler func(ctx context.Context, job *flowforge.Job) error

// Options tunes queue behaviour.
type Options struct {
	// Concurrency bounds simultaneous handler executions. Default 5.
	Concurrency int
	// Retry governs attempts and backoff. Default: 3 attempts, 1s base,
	// doubling per attempt.
	Retry flowforge.RetryPolicy
	// PollInterval is the dispatcher's cadence for picking up due jobs.
	// Enqueue nudges the dispatcher, so this mostly matters for backoff
	// wakeups. Default 250ms.
	PollInterval time.Duration
	// BatchSize caps due jobs fetched per dispatch cycle. Default 50.
	BatchSize int
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = flowforge.DefaultRetryPolicy()
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 250 * time.Millisecond
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	return o
}

// Queue delivers persisted jobs to a handler. Completed jobs are deleted;
// jobs that exhaust their attempts stay behind in the failed state for
// operator inspection. Construct with New, then Start; Stop drains in-flight
// handlers before returning.
type Queue struct {
	store   repository.JobRepository
	handler Handler
	opts    Options

	sem       *semaphore.Weighted
	wake      chan struct{}
	completed atomic.Int64

	wg      sync.WaitGroup // in-flight handlers
	cancel  context.CancelFunc
	done    chan struct{} // dispatch loop exited
	stopped atomic.Bool
}

// New creates a queue over the given job store and handler.
func New(store repository.JobRepository, handler Handler, opts Options) *Queue {
	opts = opts.withDefaults()
	return &Queue{
		store:   store,
		handler: handler,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start begins dispatching jobs.
func (q *Queue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	go q.dispatch(ctx)
	slog.Info("queue: started",
		"concurrency", q.opts.Concurrency,
		"max_attempts", q.opts.Retry.MaxAttempts)
}

// Stop stops accepting new jobs, halts dispatch, and waits for in-flight
// handlers to finish. Waiting jobs stay in the store for the next start.
func (q *Queue) Stop() {
	if q.stopped.Swap(true) {
		return
	}
	q.cancel()
	<-q.done
	q.wg.Wait()
	slog.Info("queue: stopped")
}

// Enqueue persists a job for the workflow and makes it available for
// delivery. It never blocks on delivery. The returned job ID is derived from
// the workflow ID and the enqueue time.
func (q *Queue) Enqueue(ctx context.Context, workflowID string) (string, error) {
	if q.stopped.Load() {
		return "", ErrStopped
	}

	now := time.Now()
	job := &flowforge.Job{
		ID:          flowforge.NewJobID(workflowID, now),
		WorkflowID:  workflowID,
		State:       flowforge.JobStateWaiting,
		MaxAttempts: q.opts.Retry.MaxAttempts,
		NextRunAt:   now,
		CreatedAt:   now,
	}
	if err := q.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("enqueue workflow %s: %w", workflowID, err)
	}

	// Nudge the dispatcher; drop the signal if one is already pending.
	select {
	case q.wake <- struct{}{}:
	default:
	}

	slog.Debug("queue: enqueued", "job", job.ID, "workflow", workflowID)
	return job.ID, nil
}

// Snapshot returns a best-effort view of queue depth. Completed jobs are
// deleted on success, so their count comes from an in-process counter and
// resets on restart.
func (q *Queue) Snapshot(ctx context.Context) (flowforge.QueueSnapshot, error) {
	counts, err := q.store.CountByState(ctx)
	if err != nil {
		return flowforge.QueueSnapshot{}, fmt.Errorf("queue snapshot: %w", err)
	}
	return flowforge.QueueSnapshot{
		Waiting:   counts[flowforge.JobStateWaiting],
		Active:    counts[flowforge.JobStateActive],
		Completed: int(q.completed.Load()),
		Failed:    counts[flowforge.JobStateFailed],
	}, nil
}

// dispatch is the single goroutine that moves due jobs from waiting to
// active and hands them to runJob. Having one dispatcher means a job cannot
// be picked up twice within this process.
func (q *Queue) dispatch(ctx context.Context) {
	defer close(q.done)

	ticker := time.NewTicker(q.opts.PollInterval)
	defer ticker.Stop()

	for {
		q.deliverDue(ctx)
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-ticker.C:
		}
	}
}

func (q *Queue) deliverDue(ctx context.Context) {
	due, err := q.store.ListDue(ctx, time.Now(), q.opts.BatchSize)
	if err != nil {
		slog.Warn("queue: fetching due jobs failed", "err", err)
		return
	}

	for _, job := range due {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			return // shutting down
		}

		job.State = flowforge.JobStateActive
		if err := q.store.Update(ctx, job); err != nil {
			slog.Warn("queue: marking job active failed", "job", job.ID, "err", err)
			q.sem.Release(1)
			continue
		}

		q.wg.Add(1)
		go q.runJob(job)
	}
}

// runJob executes one delivery attempt. Handlers run under their own
// context: Stop drains them rather than cancelling mid-execution.
func (q *Queue) runJob(job *flowforge.Job) {
	defer q.wg.Done()
	defer q.sem.Release(1)

	ctx := context.Background()

	err := q.safeHandle(ctx, job)
	if err == nil {
		q.completed.Add(1)
		// Completed jobs are discarded; the run history is the audit trail.
		if delErr := q.store.Delete(ctx, job.ID); delErr != nil {
			slog.Warn("queue: deleting completed job failed", "job", job.ID, "err", delErr)
		}
		slog.Info("queue: job completed", "job", job.ID)
		return
	}

	job.Attempts++
	job.LastError = err.Error()

	if job.Attempts >= job.MaxAttempts {
		job.State = flowforge.JobStateFailed
		if upErr := q.store.Update(ctx, job); upErr != nil {
			slog.Error("queue: marking job failed failed", "job", job.ID, "err", upErr)
		}
		slog.Error("queue: job failed terminally",
			"job", job.ID, "attempts", job.Attempts, "err", err)
		return
	}

	delay := backoffDelay(q.opts.Retry, job.Attempts)
	job.State = flowforge.JobStateWaiting
	job.NextRunAt = time.Now().Add(delay)
	if upErr := q.store.Update(ctx, job); upErr != nil {
		slog.Error("queue: rescheduling job failed", "job", job.ID, "err", upErr)
		return
	}
	slog.Warn("queue: job failed, retrying",
		"job", job.ID, "attempt", job.Attempts, "delay", delay, "err", err)
}

// safeHandle invokes the handler and converts a panic into an error so one
// bad job cannot take down the dispatcher.
func (q *Queue) safeHandle(ctx context.Context, job *flowforge.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %s: %v", job.ID, r)
		}
	}()
	return q.handler(ctx, job)
}

// backoffDelay computes the wait before the given retry: the base delay
// doubled for every failed attempt beyond the first.
func backoffDelay(policy flowforge.RetryPolicy, failedAttempts int) time.Duration {
	d := float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(failedAttempts-1))
	return time.Duration(d)
}
