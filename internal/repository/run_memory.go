package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

const maxRunRecords = 1000

// MemoryRunRepository stores run records in memory with FIFO eviction.
type MemoryRunRepository struct {
	mu      sync.RWMutex
	records map[string]*flowforge.WorkflowRun
	order   []string // insertion order for FIFO eviction
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		records: make(map[string]*flowforge.WorkflowRun),
	}
}

func (r *MemoryRunRepository) Create(_ context.Context, run *flowforge.WorkflowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// FIFO eviction when at capacity.
	if len(r.order) >= maxRunRecords {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.records, oldest)
	}

	cp := *run
	r.records[run.ID] = &cp
	r.order = append(r.order, run.ID)
	return nil
}

func (r *MemoryRunRepository) Get(_ context.Context, id string) (*flowforge.WorkflowRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRunRepository) Update(_ context.Context, run *flowforge.WorkflowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[run.ID]; !ok {
		return ErrRunNotFound
	}
	cp := *run
	r.records[run.ID] = &cp
	return nil
}

func (r *MemoryRunRepository) ListByWorkflow(_ context.Context, workflowID string, limit, offset int) ([]*flowforge.WorkflowRun, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []*flowforge.WorkflowRun
	for _, rec := range r.records {
		if rec.WorkflowID == workflowID {
			cp := *rec
			filtered = append(filtered, &cp)
		}
	}
	return paginateRuns(filtered, limit, offset)
}

func (r *MemoryRunRepository) ListAll(_ context.Context, limit, offset int, status string) ([]*flowforge.WorkflowRun, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*flowforge.WorkflowRun, 0, len(r.records))
	for _, rec := range r.records {
		if status == "" || string(rec.Status) == status {
			cp := *rec
			all = append(all, &cp)
		}
	}
	return paginateRuns(all, limit, offset)
}

// paginateRuns sorts newest-first and applies limit/offset.
func paginateRuns(runs []*flowforge.WorkflowRun, limit, offset int) ([]*flowforge.WorkflowRun, int, error) {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	total := len(runs)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return runs[offset:end], total, nil
}
