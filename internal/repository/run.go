package repository

import (
	"context"
	"errors"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// ErrRunNotFound is returned when a requested run record does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository abstracts persistence for workflow execution records.
type RunRepository interface {
	Create(ctx context.Context, run *flowforge.WorkflowRun) error
	Get(ctx context.Context, id string) (*flowforge.WorkflowRun, error)
	Update(ctx context.Context, run *flowforge.WorkflowRun) error
	ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*flowforge.WorkflowRun, int, error)
	// ListAll returns all runs. status filters by run status when non-empty ("" = all).
	ListAll(ctx context.Context, limit, offset int, status string) ([]*flowforge.WorkflowRun, int, error)
}
