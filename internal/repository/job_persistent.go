package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/db"
	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// PersistentJobRepository stores queue jobs in PostgreSQL so queued work
// survives process restarts.
type PersistentJobRepository struct {
	db *db.DB
}

func NewPersistentJobRepository(database *db.DB) *PersistentJobRepository {
	return &PersistentJobRepository{db: database}
}

func (r *PersistentJobRepository) Create(ctx context.Context, job *flowforge.Job) error {
	return r.db.CreateJob(ctx, job)
}

func (r *PersistentJobRepository) Get(ctx context.Context, id string) (*flowforge.Job, error) {
	job, err := r.db.GetJob(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, err
}

func (r *PersistentJobRepository) Update(ctx context.Context, job *flowforge.Job) error {
	err := r.db.UpdateJob(ctx, job)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	return err
}

func (r *PersistentJobRepository) Delete(ctx context.Context, id string) error {
	return r.db.DeleteJob(ctx, id)
}

func (r *PersistentJobRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*flowforge.Job, error) {
	return r.db.ListDueJobs(ctx, now, limit)
}

func (r *PersistentJobRepository) CountByState(ctx context.Context) (map[flowforge.JobState]int, error) {
	return r.db.CountJobsByState(ctx)
}

// ResetStale requeues jobs left active by a previous process.
func (r *PersistentJobRepository) ResetStale(ctx context.Context) (int64, error) {
	return r.db.ResetStaleActiveJobs(ctx)
}
