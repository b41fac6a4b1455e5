package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Atri9Ghosh/FlowForge/internal/db"
	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// PersistentUserRepository stores users in PostgreSQL.
type PersistentUserRepository struct {
	db *db.DB
}

func NewPersistentUserRepository(database *db.DB) *PersistentUserRepository {
	return &PersistentUserRepository{db: database}
}

func (r *PersistentUserRepository) Create(ctx context.Context, u *flowforge.User) error {
	return r.db.CreateUser(ctx, u)
}

func (r *PersistentUserRepository) Get(ctx context.Context, id string) (*flowforge.User, error) {
	u, err := r.db.GetUser(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, err
}

func (r *PersistentUserRepository) GetByExternalID(ctx context.Context, externalID string) (*flowforge.User, error) {
	u, err := r.db.GetUserByExternalID(ctx, externalID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, externalID)
	}
	return u, err
}
