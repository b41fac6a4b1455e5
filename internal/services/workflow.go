package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// ErrValidation marks a rejected workflow payload.
var ErrValidation = errors.New("invalid workflow")

// ScheduleSync is notified when a workflow's schedule-relevant fields change,
// so cron registrations track the store.
type ScheduleSync interface {
	SyncWorkflow(wf *flowforge.Workflow)
	RemoveWorkflow(workflowID string)
}

// WorkflowService manages workflow CRUD with ownership enforcement: every
// read and mutation is scoped to the calling user's ID, and a workflow owned
// by someone else is indistinguishable from a missing one.
type WorkflowService struct {
	repo      repository.WorkflowRepository
	scheduler ScheduleSync // optional
}

// NewWorkflowService creates a WorkflowService.
func NewWorkflowService(repo repository.WorkflowRepository) *WorkflowService {
	return &WorkflowService{repo: repo}
}

// SetScheduleSync wires schedule synchronization. Without it, cron changes
// take effect on the next process start.
func (s *WorkflowService) SetScheduleSync(sync ScheduleSync) {
	s.scheduler = sync
}

// WorkflowInput carries the caller-editable workflow fields.
type WorkflowInput struct {
	Name      string `json:"name"`
	Trigger   string `json:"trigger"`
	Action    string `json:"action"`
	Condition string `json:"condition"`
	Cron      string `json:"cron"`
}

func (in WorkflowInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !strings.Contains(in.Trigger, ":") {
		return fmt.Errorf("%w: trigger must be <integration>:<event>", ErrValidation)
	}
	if !strings.Contains(in.Action, ":") {
		return fmt.Errorf("%w: action must be <integration>:<effect>", ErrValidation)
	}
	return nil
}

// Create stores a new active workflow for the user.
func (s *WorkflowService) Create(ctx context.Context, userID string, in WorkflowInput) (*flowforge.Workflow, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	wf := &flowforge.Workflow{
		ID:        "wf-" + uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Trigger:   in.Trigger,
		Action:    in.Action,
		Condition: in.Condition,
		Cron:      in.Cron,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, err
	}
	s.syncSchedule(wf)
	return wf, nil
}

// Get returns the user's workflow by ID.
func (s *WorkflowService) Get(ctx context.Context, userID, id string) (*flowforge.Workflow, error) {
	wf, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.UserID != userID {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return wf, nil
}

// List returns the user's workflows, newest first.
func (s *WorkflowService) List(ctx context.Context, userID string) ([]*flowforge.Workflow, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update replaces the caller-editable fields of the user's workflow.
func (s *WorkflowService) Update(ctx context.Context, userID, id string, in WorkflowInput) (*flowforge.Workflow, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	wf, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wf.Name = in.Name
	wf.Trigger = in.Trigger
	wf.Action = in.Action
	wf.Condition = in.Condition
	wf.Cron = in.Cron
	wf.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, wf); err != nil {
		return nil, err
	}
	s.syncSchedule(wf)
	return wf, nil
}

// Toggle flips the user's workflow between active and inactive.
func (s *WorkflowService) Toggle(ctx context.Context, userID, id string) (*flowforge.Workflow, error) {
	wf, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wf.IsActive = !wf.IsActive
	wf.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, wf); err != nil {
		return nil, err
	}
	s.syncSchedule(wf)
	return wf, nil
}

// Delete removes the user's workflow.
func (s *WorkflowService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.RemoveWorkflow(id)
	}
	return nil
}

func (s *WorkflowService) syncSchedule(wf *flowforge.Workflow) {
	if s.scheduler != nil {
		s.scheduler.SyncWorkflow(wf)
	}
}
