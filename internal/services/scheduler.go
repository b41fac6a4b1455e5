package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// Enqueuer is the queue surface the scheduler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, workflowID string) (string, error)
}

// SchedulerService bridges workflow cron expressions to the job queue: when
// an active workflow's schedule fires, a job for it is enqueued. It wraps
// robfig/cron and keeps one entry per scheduled workflow.
type SchedulerService struct {
	cron      *cron.Cron
	workflows repository.WorkflowRepository
	enqueuer  Enqueuer

	mu       sync.Mutex
	entryMap map[string]cron.EntryID // workflow ID → cron entry
}

// NewSchedulerService creates a SchedulerService using standard 5-field cron
// expressions.
func NewSchedulerService(workflows repository.WorkflowRepository, enqueuer Enqueuer) *SchedulerService {
	return &SchedulerService{
		cron:      cron.New(),
		workflows: workflows,
		enqueuer:  enqueuer,
		entryMap:  make(map[string]cron.EntryID),
	}
}

// Start registers all active scheduled workflows and begins the cron loop.
func (s *SchedulerService) Start(ctx context.Context) error {
	scheduled, err := s.workflows.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: load scheduled workflows: %w", err)
	}
	for _, wf := range scheduled {
		if err := s.register(wf); err != nil {
			slog.Warn("scheduler: failed to register workflow",
				"workflow", wf.ID, "cron", wf.Cron, "err", err)
		}
	}

	s.cron.Start()
	slog.Info("scheduler: started", "workflows", len(scheduled))
	return nil
}

// Stop gracefully stops the cron loop, waiting for a firing entry to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler: stopped")
}

// SyncWorkflow reconciles one workflow's cron entry with its current state.
func (s *SchedulerService) SyncWorkflow(wf *flowforge.Workflow) {
	s.RemoveWorkflow(wf.ID)
	if !wf.IsActive || wf.Cron == "" {
		return
	}
	if err := s.register(wf); err != nil {
		slog.Warn("scheduler: failed to register workflow",
			"workflow", wf.ID, "cron", wf.Cron, "err", err)
	}
}

// RemoveWorkflow drops a workflow's cron entry, if any.
func (s *SchedulerService) RemoveWorkflow(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entryMap[workflowID]; ok {
		s.cron.Remove(id)
		delete(s.entryMap, workflowID)
	}
}

// Entries returns the number of registered cron entries.
func (s *SchedulerService) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entryMap)
}

func (s *SchedulerService) register(wf *flowforge.Workflow) error {
	workflowID := wf.ID
	entryID, err := s.cron.AddFunc(wf.Cron, func() {
		jobID, err := s.enqueuer.Enqueue(context.Background(), workflowID)
		if err != nil {
			slog.Error("scheduler: enqueue failed", "workflow", workflowID, "err", err)
			return
		}
		slog.Info("scheduler: enqueued scheduled run", "workflow", workflowID, "job", jobID)
	})
	if err != nil {
		return fmt.Errorf("parse cron %q: %w", wf.Cron, err)
	}

	s.mu.Lock()
	s.entryMap[workflowID] = entryID
	s.mu.Unlock()
	return nil
}
