package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// flakyRunRepo wraps a real repository and fails Update on demand.
type flakyRunRepo struct {
	repository.RunRepository
	failUpdate bool
}

func (r *flakyRunRepo) Update(ctx context.Context, run *flowforge.WorkflowRun) error {
	if r.failUpdate {
		return errors.New("run store unavailable")
	}
	return r.RunRepository.Update(ctx, run)
}

func TestWorkerSuccessfulJob(t *testing.T) {
	trigger := &stubTrigger{event: flowforge.EventData{"subject": "hi"}}
	action := &stubAction{result: flowforge.ActionResult{"message_id": "m-1"}}
	processor, workflows := newTestProcessor(trigger, action)
	seedWorkflow(t, workflows, &flowforge.Workflow{
		Trigger: "test:fire", Action: "test:do", IsActive: true,
	})

	runs := NewRunHistoryService(repository.NewMemoryRunRepository())
	worker := NewWorker(processor, runs)

	job := &flowforge.Job{ID: "job-1", WorkflowID: "wf-test"}
	if err := worker.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob: %v", err)
	}

	records, total, err := runs.ListAllRuns(context.Background(), 10, 0, "")
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly 1 run record, got %d", total)
	}
	run := records[0]
	if run.Status != flowforge.RunStatusSuccess {
		t.Fatalf("expected success status, got %q (logs: %q)", run.Status, run.Logs)
	}
	if run.Logs != "Successfully processed workflow: test:fire -> test:do" {
		t.Fatalf("unexpected logs: %q", run.Logs)
	}
	if run.EndedAt == nil {
		t.Fatal("finished run must carry an end time")
	}
}

func TestWorkerFailedOutcomeIsNotRetried(t *testing.T) {
	processor, _ := newTestProcessor(&stubTrigger{}, &stubAction{})
	runs := NewRunHistoryService(repository.NewMemoryRunRepository())
	worker := NewWorker(processor, runs)

	// The workflow does not exist: a failed outcome, not a delivery failure.
	job := &flowforge.Job{ID: "job-1", WorkflowID: "wf-missing"}
	if err := worker.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("failed outcomes must not be returned as errors, got: %v", err)
	}

	records, total, err := runs.ListAllRuns(context.Background(), 10, 0, "")
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 run record, got %d", total)
	}
	if records[0].Status != flowforge.RunStatusFailed {
		t.Fatalf("expected failed status, got %q", records[0].Status)
	}
	if records[0].Logs != "Workflow not found" {
		t.Fatalf("unexpected logs: %q", records[0].Logs)
	}
	if records[0].EndedAt == nil {
		t.Fatal("finished run must carry an end time")
	}
}

func TestWorkerStoreFailureWritesReplacementRun(t *testing.T) {
	trigger := &stubTrigger{event: flowforge.EventData{"subject": "hi"}}
	action := &stubAction{result: flowforge.ActionResult{"ok": true}}
	processor, workflows := newTestProcessor(trigger, action)
	seedWorkflow(t, workflows, &flowforge.Workflow{
		Trigger: "test:fire", Action: "test:do", IsActive: true,
	})

	store := &flakyRunRepo{RunRepository: repository.NewMemoryRunRepository(), failUpdate: true}
	runs := NewRunHistoryService(store)
	worker := NewWorker(processor, runs)

	job := &flowforge.Job{ID: "job-1", WorkflowID: "wf-test"}
	err := worker.HandleJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected an error when the run record cannot be finalized")
	}

	// The original pending run stays behind and a replacement failed run is
	// written, so the failure is recorded even though finalize lost the race
	// with the store.
	records, total, listErr := runs.ListAllRuns(context.Background(), 10, 0, "")
	if listErr != nil {
		t.Fatalf("list runs: %v", listErr)
	}
	if total != 2 {
		t.Fatalf("expected 2 run records (orphaned pending + failed), got %d", total)
	}

	var pending, failed int
	for _, run := range records {
		switch run.Status {
		case flowforge.RunStatusPending:
			pending++
		case flowforge.RunStatusFailed:
			failed++
			if run.Logs != "run store unavailable" {
				t.Fatalf("unexpected failure logs: %q", run.Logs)
			}
			if run.EndedAt != nil {
				t.Fatal("directly recorded failures carry no end time")
			}
		}
	}
	if pending != 1 || failed != 1 {
		t.Fatalf("expected 1 pending and 1 failed run, got %d pending, %d failed", pending, failed)
	}
}
