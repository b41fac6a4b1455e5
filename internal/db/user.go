package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// CreateUser stores a new user. Inserting an external ID that already exists
// is a no-op, so signup can be retried safely.
func (d *DB) CreateUser(ctx context.Context, u *flowforge.User) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO users (id, external_id, email, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (external_id) DO NOTHING`,
		u.ID, u.ExternalID, u.Email, u.Name, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id string) (*flowforge.User, error) {
	u := &flowforge.User{}
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, external_id, email, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByExternalID retrieves a user by the identity the auth boundary
// verified.
func (d *DB) GetUserByExternalID(ctx context.Context, externalID string) (*flowforge.User, error) {
	u := &flowforge.User{}
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, external_id, email, name, created_at FROM users WHERE external_id = $1`, externalID,
	).Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
