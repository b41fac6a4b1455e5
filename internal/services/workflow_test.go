package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// recordingSync records schedule sync notifications.
type recordingSync struct {
	synced  []string
	removed []string
}

func (r *recordingSync) SyncWorkflow(wf *flowforge.Workflow) {
	r.synced = append(r.synced, wf.ID)
}

func (r *recordingSync) RemoveWorkflow(workflowID string) {
	r.removed = append(r.removed, workflowID)
}

func validInput() WorkflowInput {
	return WorkflowInput{
		Name:    "email to telegram",
		Trigger: "gmail:new_email",
		Action:  "telegram:send_message",
	}
}

func TestWorkflowServiceCreate(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())

	wf, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(wf.ID, "wf-") {
		t.Fatalf("unexpected workflow ID: %q", wf.ID)
	}
	if !wf.IsActive {
		t.Fatal("new workflows must start active")
	}
	if wf.UserID != "user-1" {
		t.Fatalf("unexpected owner: %q", wf.UserID)
	}
}

func TestWorkflowServiceValidation(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	cases := []struct {
		name string
		in   WorkflowInput
	}{
		{"empty name", WorkflowInput{Name: "  ", Trigger: "a:b", Action: "c:d"}},
		{"unnamespaced trigger", WorkflowInput{Name: "x", Trigger: "gmail", Action: "c:d"}},
		{"unnamespaced action", WorkflowInput{Name: "x", Trigger: "a:b", Action: "telegram"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", c.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestWorkflowServiceOwnership(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	wf, err := svc.Create(ctx, "user-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user's workflow looks exactly like a missing one.
	if _, err := svc.Get(ctx, "user-2", wf.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not-found for foreign workflow, got %v", err)
	}
	if _, err := svc.Toggle(ctx, "user-2", wf.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not-found on foreign toggle, got %v", err)
	}
	if err := svc.Delete(ctx, "user-2", wf.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not-found on foreign delete, got %v", err)
	}

	// The owner still sees it.
	if _, err := svc.Get(ctx, "user-1", wf.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
}

func TestWorkflowServiceUpdate(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	wf, _ := svc.Create(ctx, "user-1", validInput())

	in := validInput()
	in.Name = "renamed"
	in.Condition = `from == "boss@example.com"`
	in.Cron = "*/5 * * * *"

	updated, err := svc.Update(ctx, "user-1", wf.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Condition != in.Condition || updated.Cron != in.Cron {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if !updated.UpdatedAt.After(wf.UpdatedAt) && !updated.UpdatedAt.Equal(wf.UpdatedAt) {
		t.Fatal("updated_at went backwards")
	}
}

func TestWorkflowServiceToggle(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	wf, _ := svc.Create(ctx, "user-1", validInput())

	toggled, err := svc.Toggle(ctx, "user-1", wf.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected inactive after first toggle")
	}

	toggled, err = svc.Toggle(ctx, "user-1", wf.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !toggled.IsActive {
		t.Fatal("expected active after second toggle")
	}
}

func TestWorkflowServiceDelete(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	wf, _ := svc.Create(ctx, "user-1", validInput())
	if err := svc.Delete(ctx, "user-1", wf.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "user-1", wf.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestWorkflowServiceList(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	ctx := context.Background()

	svc.Create(ctx, "user-1", validInput())
	svc.Create(ctx, "user-1", validInput())
	svc.Create(ctx, "user-2", validInput())

	mine, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 workflows, got %d", len(mine))
	}
}

func TestWorkflowServiceScheduleSync(t *testing.T) {
	svc := NewWorkflowService(repository.NewMemoryWorkflowRepository())
	sync := &recordingSync{}
	svc.SetScheduleSync(sync)
	ctx := context.Background()

	wf, _ := svc.Create(ctx, "user-1", validInput())
	if len(sync.synced) != 1 {
		t.Fatalf("expected 1 sync after create, got %d", len(sync.synced))
	}

	svc.Toggle(ctx, "user-1", wf.ID)
	if len(sync.synced) != 2 {
		t.Fatalf("expected 2 syncs after toggle, got %d", len(sync.synced))
	}

	svc.Delete(ctx, "user-1", wf.ID)
	if len(sync.removed) != 1 || sync.removed[0] != wf.ID {
		t.Fatalf("expected removal notification for %s, got %v", wf.ID, sync.removed)
	}
}
