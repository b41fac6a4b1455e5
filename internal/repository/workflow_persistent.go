package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/db"
	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// PersistentWorkflowRepository stores workflows in PostgreSQL. Unlike a
// cache-first design, every operation goes to the database and reports its
// error, so the worker can distinguish infrastructure failures (retried by
// the queue) from domain conditions.
type PersistentWorkflowRepository struct {
	db *db.DB
}

func NewPersistentWorkflowRepository(database *db.DB) *PersistentWorkflowRepository {
	return &PersistentWorkflowRepository{db: database}
}

func (r *PersistentWorkflowRepository) Create(ctx context.Context, wf *flowforge.Workflow) error {
	return r.db.CreateWorkflow(ctx, wf)
}

func (r *PersistentWorkflowRepository) Get(ctx context.Context, id string) (*flowforge.Workflow, error) {
	wf, err := r.db.GetWorkflow(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return wf, err
}

func (r *PersistentWorkflowRepository) ListByUser(ctx context.Context, userID string) ([]*flowforge.Workflow, error) {
	return r.db.ListWorkflowsByUser(ctx, userID)
}

func (r *PersistentWorkflowRepository) ListScheduled(ctx context.Context) ([]*flowforge.Workflow, error) {
	return r.db.ListScheduledWorkflows(ctx)
}

func (r *PersistentWorkflowRepository) Update(ctx context.Context, wf *flowforge.Workflow) error {
	err := r.db.UpdateWorkflow(ctx, wf)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, wf.ID)
	}
	return err
}

func (r *PersistentWorkflowRepository) UpdateLastRun(ctx context.Context, id string, at time.Time) error {
	err := r.db.UpdateWorkflowLastRun(ctx, id, at)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func (r *PersistentWorkflowRepository) Delete(ctx context.Context, id string) error {
	err := r.db.DeleteWorkflow(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}
