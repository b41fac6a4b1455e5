package services

import (
	"context"
	"log/slog"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// Worker is the queue handler for workflow jobs. It brackets each processor
// invocation with run-record bookkeeping: create pending, execute, finalize.
type Worker struct {
	processor *Processor
	runs      *RunHistoryService
}

// NewWorker creates a Worker.
func NewWorker(processor *Processor, runs *RunHistoryService) *Worker {
	return &Worker{processor: processor, runs: runs}
}

// HandleJob executes one delivered job.
//
// A failed Outcome is not a delivery failure: the run record captures it and
// nil is returned, so the queue does not retry outcomes that retrying cannot
// change. Only store failures, which leave no terminal run record, are
// returned as errors, after a replacement run is written directly in the
// failed state. The pending run from the failed attempt stays behind; the
// run table errs on the side of never losing a failure.
func (w *Worker) HandleJob(ctx context.Context, job *flowforge.Job) error {
	run, err := w.runs.StartRun(ctx, job.WorkflowID)
	if err != nil {
		slog.Error("worker: creating run record failed",
			"job", job.ID, "workflow", job.WorkflowID, "err", err)
		w.recordFailure(ctx, job.WorkflowID, err)
		return err
	}

	outcome := w.processor.Execute(ctx, job.WorkflowID)

	if err := w.runs.FinishRun(ctx, run.ID, outcome); err != nil {
		slog.Error("worker: finalizing run record failed",
			"job", job.ID, "run", run.ID, "err", err)
		w.recordFailure(ctx, job.WorkflowID, err)
		return err
	}

	slog.Info("worker: job processed",
		"job", job.ID, "run", run.ID, "success", outcome.Success)
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, workflowID string, cause error) {
	msg := cause.Error()
	if msg == "" {
		msg = "Unknown error occurred"
	}
	if _, err := w.runs.RecordFailure(ctx, workflowID, msg); err != nil {
		slog.Error("worker: recording failure run failed",
			"workflow", workflowID, "err", err)
	}
}
