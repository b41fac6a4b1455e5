package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// MemoryWorkflowRepository is a thread-safe in-memory WorkflowRepository.
type MemoryWorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[string]*flowforge.Workflow
}

func NewMemoryWorkflowRepository() *MemoryWorkflowRepository {
	return &MemoryWorkflowRepository{
		workflows: make(map[string]*flowforge.Workflow),
	}
}

func (r *MemoryWorkflowRepository) Create(_ context.Context, wf *flowforge.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wf
	r.workflows[wf.ID] = &cp
	return nil
}

func (r *MemoryWorkflowRepository) Get(_ context.Context, id string) (*flowforge.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *wf
	return &cp, nil
}

func (r *MemoryWorkflowRepository) ListByUser(_ context.Context, userID string) ([]*flowforge.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*flowforge.Workflow
	for _, wf := range r.workflows {
		if wf.UserID == userID {
			cp := *wf
			result = append(result, &cp)
		}
	}

	// Newest first.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryWorkflowRepository) ListScheduled(_ context.Context) ([]*flowforge.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*flowforge.Workflow
	for _, wf := range r.workflows {
		if wf.IsActive && wf.Cron != "" {
			cp := *wf
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *MemoryWorkflowRepository) Update(_ context.Context, wf *flowforge.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workflows[wf.ID]; !ok {
		return ErrNotFound
	}
	cp := *wf
	r.workflows[wf.ID] = &cp
	return nil
}

func (r *MemoryWorkflowRepository) UpdateLastRun(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wf, ok := r.workflows[id]
	if !ok {
		return ErrNotFound
	}
	wf.LastRun = &at
	return nil
}

func (r *MemoryWorkflowRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workflows[id]; !ok {
		return ErrNotFound
	}
	delete(r.workflows, id)
	return nil
}
