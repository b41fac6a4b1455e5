package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

const runColumns = `id, workflow_id, status, logs, created_at, ended_at`

// CreateRun stores a new run record.
func (d *DB) CreateRun(ctx context.Context, r *flowforge.WorkflowRun) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO workflow_runs (id, workflow_id, status, logs, created_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.WorkflowID, string(r.Status), r.Logs, r.CreatedAt, r.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run record by ID.
func (d *DB) GetRun(ctx context.Context, id string) (*flowforge.WorkflowRun, error) {
	row := d.Pool.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM workflow_runs WHERE id = $1`, id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// UpdateRun updates an existing run record.
func (d *DB) UpdateRun(ctx context.Context, r *flowforge.WorkflowRun) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE workflow_runs SET status = $1, logs = $2, ended_at = $3 WHERE id = $4`,
		string(r.Status), r.Logs, r.EndedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run not found: %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// ListRunsByWorkflow returns runs for a specific workflow, newest first,
// with pagination.
func (d *DB) ListRunsByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*flowforge.WorkflowRun, int, error) {
	var total int
	err := d.Pool.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflow_runs WHERE workflow_id = $1`, workflowID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+runColumns+` FROM workflow_runs WHERE workflow_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		workflowID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows, total)
}

// ListAllRuns returns all runs with pagination. status filters by run status
// when non-empty.
func (d *DB) ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*flowforge.WorkflowRun, int, error) {
	var total int
	err := d.Pool.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflow_runs WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+runColumns+` FROM workflow_runs WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows, total)
}

func scanRun(row rowScanner) (*flowforge.WorkflowRun, error) {
	r := &flowforge.WorkflowRun{}
	var status string
	var endedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.WorkflowID, &status, &r.Logs, &r.CreatedAt, &endedAt); err != nil {
		return nil, err
	}
	r.Status = flowforge.RunStatus(status)
	if endedAt.Valid {
		r.EndedAt = &endedAt.Time
	}
	return r, nil
}

func scanRuns(rows *sql.Rows, total int) ([]*flowforge.WorkflowRun, int, error) {
	var result []*flowforge.WorkflowRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	return result, total, rows.Err()
}
