package repository

import (
	"context"
	"sync"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// MemoryUserRepository is a thread-safe in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*flowforge.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*flowforge.User),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *flowforge.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Signup is an upsert keyed on the external identity.
	for _, existing := range r.users {
		if existing.ExternalID == u.ExternalID {
			return nil
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) Get(_ context.Context, id string) (*flowforge.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByExternalID(_ context.Context, externalID string) (*flowforge.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}
