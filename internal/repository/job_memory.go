package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// MemoryJobRepository is a thread-safe in-memory JobRepository.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*flowforge.Job
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[string]*flowforge.Job),
	}
}

func (r *MemoryJobRepository) Create(_ context.Context, job *flowforge.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *MemoryJobRepository) Get(_ context.Context, id string) (*flowforge.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *MemoryJobRepository) Update(_ context.Context, job *flowforge.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *MemoryJobRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *MemoryJobRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*flowforge.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []*flowforge.Job
	for _, job := range r.jobs {
		if job.State == flowforge.JobStateWaiting && !job.NextRunAt.After(now) {
			cp := *job
			due = append(due, &cp)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRunAt.Before(due[j].NextRunAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryJobRepository) CountByState(_ context.Context) (map[flowforge.JobState]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[flowforge.JobState]int)
	for _, job := range r.jobs {
		counts[job.State]++
	}
	return counts, nil
}
