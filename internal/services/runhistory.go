package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// startingLogs is the initial log line of every run created at the moment a
// queued job begins execution.
const startingLogs = "Starting workflow execution..."

// RunHistoryService manages workflow execution records.
type RunHistoryService struct {
	runs repository.RunRepository
}

// NewRunHistoryService creates a RunHistoryService.
func NewRunHistoryService(runs repository.RunRepository) *RunHistoryService {
	return &RunHistoryService{runs: runs}
}

// StartRun creates a run record in the pending state.
func (s *RunHistoryService) StartRun(ctx context.Context, workflowID string) (*flowforge.WorkflowRun, error) {
	run := &flowforge.WorkflowRun{
		ID:         "run-" + uuid.NewString(),
		WorkflowID: workflowID,
		Status:     flowforge.RunStatusPending,
		Logs:       startingLogs,
		CreatedAt:  time.Now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun transitions a pending run to its terminal state per the outcome,
// replacing the logs and stamping the end time.
func (s *RunHistoryService) FinishRun(ctx context.Context, id string, outcome flowforge.Outcome) error {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	if outcome.Success {
		run.Status = flowforge.RunStatusSuccess
	} else {
		run.Status = flowforge.RunStatusFailed
	}
	run.Logs = outcome.Logs
	run.EndedAt = &now
	return s.runs.Update(ctx, run)
}

// RecordFailure creates a run directly in the failed state. Used on the
// worker's error path, where the original pending run could not be
// transitioned; that pending record is left in place so the failure is never
// lost.
func (s *RunHistoryService) RecordFailure(ctx context.Context, workflowID, logs string) (*flowforge.WorkflowRun, error) {
	run := &flowforge.WorkflowRun{
		ID:         "run-" + uuid.NewString(),
		WorkflowID: workflowID,
		Status:     flowforge.RunStatusFailed,
		Logs:       logs,
		CreatedAt:  time.Now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves a single run record.
func (s *RunHistoryService) GetRun(ctx context.Context, id string) (*flowforge.WorkflowRun, error) {
	return s.runs.Get(ctx, id)
}

// ListRuns returns runs for a specific workflow, newest first.
func (s *RunHistoryService) ListRuns(ctx context.Context, workflowID string, limit, offset int) ([]*flowforge.WorkflowRun, int, error) {
	return s.runs.ListByWorkflow(ctx, workflowID, limit, offset)
}

// ListAllRuns returns all runs. status filters by run status when non-empty.
func (s *RunHistoryService) ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*flowforge.WorkflowRun, int, error) {
	return s.runs.ListAll(ctx, limit, offset, status)
}
