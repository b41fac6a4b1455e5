// Package repository defines storage interfaces for domain entities.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// ErrNotFound is returned when a requested workflow does not exist.
var ErrNotFound = errors.New("workflow not found")

// WorkflowRepository abstracts workflow persistence so callers don't need to
// know whether storage is in-memory or PostgreSQL.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *flowforge.Workflow) error
	Get(ctx context.Context, id string) (*flowforge.Workflow, error)
	ListByUser(ctx context.Context, userID string) ([]*flowforge.Workflow, error)
	// ListScheduled returns active workflows carrying a cron expression.
	ListScheduled(ctx context.Context) ([]*flowforge.Workflow, error)
	Update(ctx context.Context, wf *flowforge.Workflow) error
	// UpdateLastRun stamps the time of an execution attempt, independent of
	// whether the attempt succeeded.
	UpdateLastRun(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
