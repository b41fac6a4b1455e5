package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

const workflowColumns = `id, user_id, name, trigger, action, condition, cron, is_active, last_run, created_at, updated_at`

// CreateWorkflow stores a new workflow.
func (d *DB) CreateWorkflow(ctx context.Context, wf *flowforge.Workflow) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO workflows (id, user_id, name, trigger, action, condition, cron, is_active, last_run, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		wf.ID, wf.UserID, wf.Name, wf.Trigger, wf.Action, wf.Condition, wf.Cron,
		wf.IsActive, wf.LastRun, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by ID.
func (d *DB) GetWorkflow(ctx context.Context, id string) (*flowforge.Workflow, error) {
	row := d.Pool.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id,
	)
	wf, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

// ListWorkflowsByUser returns a user's workflows, newest first.
func (d *DB) ListWorkflowsByUser(ctx context.Context, userID string) ([]*flowforge.Workflow, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var result []*flowforge.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		result = append(result, wf)
	}
	return result, rows.Err()
}

// ListScheduledWorkflows returns active workflows that carry a cron expression.
func (d *DB) ListScheduledWorkflows(ctx context.Context) ([]*flowforge.Workflow, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE is_active AND cron <> ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scheduled workflows: %w", err)
	}
	defer rows.Close()

	var result []*flowforge.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		result = append(result, wf)
	}
	return result, rows.Err()
}

// UpdateWorkflow updates a workflow record.
func (d *DB) UpdateWorkflow(ctx context.Context, wf *flowforge.Workflow) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE workflows SET name = $1, trigger = $2, action = $3, condition = $4, cron = $5, is_active = $6, last_run = $7, updated_at = $8
		 WHERE id = $9`,
		wf.Name, wf.Trigger, wf.Action, wf.Condition, wf.Cron, wf.IsActive, wf.LastRun, wf.UpdatedAt, wf.ID,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("workflow not found: %s: %w", wf.ID, ErrNotFound)
	}
	return nil
}

// UpdateWorkflowLastRun stamps the last execution attempt time.
func (d *DB) UpdateWorkflowLastRun(ctx context.Context, id string, at time.Time) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE workflows SET last_run = $1 WHERE id = $2`, at, id,
	)
	if err != nil {
		return fmt.Errorf("update last run: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("workflow not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteWorkflow removes a workflow by ID.
func (d *DB) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("workflow not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*flowforge.Workflow, error) {
	wf := &flowforge.Workflow{}
	var lastRun sql.NullTime
	err := row.Scan(&wf.ID, &wf.UserID, &wf.Name, &wf.Trigger, &wf.Action,
		&wf.Condition, &wf.Cron, &wf.IsActive, &lastRun, &wf.CreatedAt, &wf.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		wf.LastRun = &lastRun.Time
	}
	return wf, nil
}
