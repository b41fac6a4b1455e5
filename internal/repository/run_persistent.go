package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Atri9Ghosh/FlowForge/internal/db"
	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// PersistentRunRepository stores run records in PostgreSQL. Write errors are
// reported to the caller: a run record that cannot be persisted is a delivery
// failure the queue must see.
type PersistentRunRepository struct {
	db *db.DB
}

func NewPersistentRunRepository(database *db.DB) *PersistentRunRepository {
	return &PersistentRunRepository{db: database}
}

func (r *PersistentRunRepository) Create(ctx context.Context, run *flowforge.WorkflowRun) error {
	return r.db.CreateRun(ctx, run)
}

func (r *PersistentRunRepository) Get(ctx context.Context, id string) (*flowforge.WorkflowRun, error) {
	run, err := r.db.GetRun(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (r *PersistentRunRepository) Update(ctx context.Context, run *flowforge.WorkflowRun) error {
	err := r.db.UpdateRun(ctx, run)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return err
}

func (r *PersistentRunRepository) ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*flowforge.WorkflowRun, int, error) {
	return r.db.ListRunsByWorkflow(ctx, workflowID, limit, offset)
}

func (r *PersistentRunRepository) ListAll(ctx context.Context, limit, offset int, status string) ([]*flowforge.WorkflowRun, int, error) {
	return r.db.ListAllRuns(ctx, limit, offset, status)
}
