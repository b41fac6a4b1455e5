package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// ErrJobNotFound is returned when a requested queue job does not exist.
var ErrJobNotFound = errors.New("job not found")

// JobRepository abstracts persistence for queue jobs. The queue relies on it
// for durability: jobs survive in the waiting state until a worker takes
// them, and terminally failed jobs stay behind for inspection.
type JobRepository interface {
	Create(ctx context.Context, job *flowforge.Job) error
	Get(ctx context.Context, id string) (*flowforge.Job, error)
	Update(ctx context.Context, job *flowforge.Job) error
	Delete(ctx context.Context, id string) error
	// ListDue returns waiting jobs whose backoff deadline has passed,
	// oldest deadline first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*flowforge.Job, error)
	CountByState(ctx context.Context) (map[flowforge.JobState]int, error)
}
