package repository

import (
	"context"
	"errors"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// ErrUserNotFound is returned when a requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *flowforge.User) error
	Get(ctx context.Context, id string) (*flowforge.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*flowforge.User, error)
}
