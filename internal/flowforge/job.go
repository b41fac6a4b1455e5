package flowforge

import (
	"fmt"
	"time"
)

// --- Job State ---

// JobState is the delivery state of a queued job.
type JobState string

const (
	JobStateWaiting   JobState = "waiting"
	JobStateActive    JobState = "active"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Job is one unit of queued work: "execute this workflow now".
// Completed jobs are discarded by the queue; failed jobs are retained for
// inspection once their attempts are exhausted.
type Job struct {
	ID          string    `json:"id"`
	WorkflowID  string    `json:"workflow_id"`
	State       JobState  `json:"state"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	LastError   string    `json:"last_error,omitempty"`
	NextRunAt   time.Time `json:"next_run_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewJobID derives a job identifier from the workflow id and the enqueue
// time, so repeated enqueues of the same workflow never collide.
func NewJobID(workflowID string, at time.Time) string {
	return fmt.Sprintf("workflow-%s-%d", workflowID, at.UnixMilli())
}

// --- Retry Policy ---

// RetryPolicy defines how failed job deliveries are retried.
type RetryPolicy struct {
	MaxAttempts   int           `json:"max_attempts"   yaml:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay"  yaml:"initial_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns the stock policy: 3 attempts with exponential
// backoff starting at one second and doubling per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2.0,
	}
}

// QueueSnapshot is a best-effort, point-in-time view of queue depth.
// It is not transactionally consistent with concurrent mutations.
type QueueSnapshot struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}
