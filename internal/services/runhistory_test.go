package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

func TestRunHistoryStartRun(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())

	run, err := svc.StartRun(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if !strings.HasPrefix(run.ID, "run-") {
		t.Fatalf("unexpected run ID: %q", run.ID)
	}
	if run.Status != flowforge.RunStatusPending {
		t.Fatalf("expected pending status, got %q", run.Status)
	}
	if run.Logs != "Starting workflow execution..." {
		t.Fatalf("unexpected initial logs: %q", run.Logs)
	}
	if run.EndedAt != nil {
		t.Fatal("pending run must not have an end time")
	}
}

func TestRunHistoryFinishRun(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())
	ctx := context.Background()

	run, err := svc.StartRun(ctx, "wf-1")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	outcome := flowforge.Outcome{Success: true, Logs: "all good"}
	if err := svc.FinishRun(ctx, run.ID, outcome); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := svc.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != flowforge.RunStatusSuccess {
		t.Fatalf("expected success, got %q", got.Status)
	}
	if got.Logs != "all good" {
		t.Fatalf("logs not replaced: %q", got.Logs)
	}
	if got.EndedAt == nil {
		t.Fatal("finished run must carry an end time")
	}
	if !got.Status.Terminal() {
		t.Fatal("finished run must be terminal")
	}
}

func TestRunHistoryFinishRunFailedOutcome(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())
	ctx := context.Background()

	run, _ := svc.StartRun(ctx, "wf-1")
	if err := svc.FinishRun(ctx, run.ID, flowforge.Outcome{Success: false, Logs: "boom"}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, _ := svc.GetRun(ctx, run.ID)
	if got.Status != flowforge.RunStatusFailed {
		t.Fatalf("expected failed, got %q", got.Status)
	}
	if got.Logs != "boom" {
		t.Fatalf("unexpected logs: %q", got.Logs)
	}
}

func TestRunHistoryFinishUnknownRun(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())

	err := svc.FinishRun(context.Background(), "run-missing", flowforge.Outcome{Success: true})
	if err == nil {
		t.Fatal("expected an error for an unknown run")
	}
}

func TestRunHistoryRecordFailure(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())

	run, err := svc.RecordFailure(context.Background(), "wf-1", "db timeout")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if run.Status != flowforge.RunStatusFailed {
		t.Fatalf("expected failed status, got %q", run.Status)
	}
	if run.Logs != "db timeout" {
		t.Fatalf("unexpected logs: %q", run.Logs)
	}
	if run.EndedAt != nil {
		t.Fatal("directly recorded failures carry no end time")
	}
}

func TestRunHistoryListRunsByWorkflow(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.StartRun(ctx, "wf-a"); err != nil {
			t.Fatalf("StartRun: %v", err)
		}
	}
	if _, err := svc.StartRun(ctx, "wf-b"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	runs, total, err := svc.ListRuns(ctx, "wf-a", 2, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs in page, got %d", len(runs))
	}
	for _, run := range runs {
		if run.WorkflowID != "wf-a" {
			t.Fatalf("run for wrong workflow: %q", run.WorkflowID)
		}
	}
}

func TestRunHistoryListAllWithStatusFilter(t *testing.T) {
	svc := NewRunHistoryService(repository.NewMemoryRunRepository())
	ctx := context.Background()

	run, _ := svc.StartRun(ctx, "wf-a")
	svc.FinishRun(ctx, run.ID, flowforge.Outcome{Success: false, Logs: "boom"})
	svc.StartRun(ctx, "wf-a")

	failed, total, err := svc.ListAllRuns(ctx, 10, 0, "failed")
	if err != nil {
		t.Fatalf("ListAllRuns: %v", err)
	}
	if total != 1 || len(failed) != 1 {
		t.Fatalf("expected 1 failed run, got total=%d len=%d", total, len(failed))
	}
	if failed[0].Status != flowforge.RunStatusFailed {
		t.Fatalf("unexpected status: %q", failed[0].Status)
	}
}
