package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

const jobColumns = `id, workflow_id, state, attempts, max_attempts, last_error, next_run_at, created_at`

// CreateJob stores a new queue job.
func (d *DB) CreateJob(ctx context.Context, j *flowforge.Job) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO queue_jobs (id, workflow_id, state, attempts, max_attempts, last_error, next_run_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, j.WorkflowID, string(j.State), j.Attempts, j.MaxAttempts, j.LastError, j.NextRunAt, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob retrieves a queue job by ID.
func (d *DB) GetJob(ctx context.Context, id string) (*flowforge.Job, error) {
	row := d.Pool.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM queue_jobs WHERE id = $1`, id,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// UpdateJob updates a queue job record.
func (d *DB) UpdateJob(ctx context.Context, j *flowforge.Job) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE queue_jobs SET state = $1, attempts = $2, last_error = $3, next_run_at = $4 WHERE id = $5`,
		string(j.State), j.Attempts, j.LastError, j.NextRunAt, j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("job not found: %s: %w", j.ID, ErrNotFound)
	}
	return nil
}

// DeleteJob removes a queue job.
func (d *DB) DeleteJob(ctx context.Context, id string) error {
	_, err := d.Pool.ExecContext(ctx, `DELETE FROM queue_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// ListDueJobs returns waiting jobs whose backoff deadline has passed,
// oldest deadline first.
func (d *DB) ListDueJobs(ctx context.Context, now time.Time, limit int) ([]*flowforge.Job, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM queue_jobs WHERE state = $1 AND next_run_at <= $2 ORDER BY next_run_at LIMIT $3`,
		string(flowforge.JobStateWaiting), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}
	defer rows.Close()

	var result []*flowforge.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// CountJobsByState returns the number of jobs in each state.
func (d *DB) CountJobsByState(ctx context.Context) (map[flowforge.JobState]int, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM queue_jobs GROUP BY state`,
	)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[flowforge.JobState]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		counts[flowforge.JobState(state)] = n
	}
	return counts, rows.Err()
}

// ResetStaleActiveJobs requeues jobs left active by a previous process.
// Called once at startup so an unclean shutdown cannot strand deliveries.
func (d *DB) ResetStaleActiveJobs(ctx context.Context) (int64, error) {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE queue_jobs SET state = $1, next_run_at = NOW() WHERE state = $2`,
		string(flowforge.JobStateWaiting), string(flowforge.JobStateActive),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stale jobs: %w", err)
	}
	return res.RowsAffected()
}

func scanJob(row rowScanner) (*flowforge.Job, error) {
	j := &flowforge.Job{}
	var state string
	if err := row.Scan(&j.ID, &j.WorkflowID, &state, &j.Attempts, &j.MaxAttempts,
		&j.LastError, &j.NextRunAt, &j.CreatedAt); err != nil {
		return nil, err
	}
	j.State = flowforge.JobState(state)
	return j, nil
}
