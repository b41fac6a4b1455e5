package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/services"
)

func createTestWorkflow(t *testing.T, handler http.Handler, token string) flowforge.Workflow {
	t.Helper()
	w := do(t, handler, "POST", "/api/workflows", token, services.WorkflowInput{
		Name:    "email to telegram",
		Trigger: "gmail:new_email",
		Action:  "telegram:send_message",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create workflow: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var wf flowforge.Workflow
	decode(t, w, &wf)
	return wf
}

func TestWorkflowLifecycle(t *testing.T) {
	handler := newTestServer(t)
	token := signup(t, handler, "auth0|abc")

	wf := createTestWorkflow(t, handler, token)
	if !strings.HasPrefix(wf.ID, "wf-") {
		t.Fatalf("unexpected workflow ID: %q", wf.ID)
	}
	if !wf.IsActive {
		t.Fatal("new workflows must start active")
	}

	// List shows it.
	w := do(t, handler, "GET", "/api/workflows", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []flowforge.Workflow
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != wf.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Update renames it.
	w = do(t, handler, "PUT", "/api/workflows/"+wf.ID, token, services.WorkflowInput{
		Name:    "renamed",
		Trigger: "github:new_issue",
		Action:  "telegram:send_message",
		Cron:    "*/5 * * * *",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated flowforge.Workflow
	decode(t, w, &updated)
	if updated.Name != "renamed" || updated.Trigger != "github:new_issue" || updated.Cron != "*/5 * * * *" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// Toggle deactivates it.
	w = do(t, handler, "POST", "/api/workflows/"+wf.ID+"/toggle", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", w.Code)
	}
	var toggled flowforge.Workflow
	decode(t, w, &toggled)
	if toggled.IsActive {
		t.Fatal("expected inactive after toggle")
	}

	// Delete removes it.
	w = do(t, handler, "DELETE", "/api/workflows/"+wf.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	w = do(t, handler, "GET", "/api/workflows/"+wf.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestWorkflowValidation(t *testing.T) {
	handler := newTestServer(t)
	token := signup(t, handler, "auth0|abc")

	w := do(t, handler, "POST", "/api/workflows", token, services.WorkflowInput{
		Name:    "",
		Trigger: "gmail:new_email",
		Action:  "telegram:send_message",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", w.Code)
	}

	w = do(t, handler, "POST", "/api/workflows", token, services.WorkflowInput{
		Name:    "x",
		Trigger: "gmail",
		Action:  "telegram:send_message",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unnamespaced trigger, got %d", w.Code)
	}
}

func TestWorkflowOwnership(t *testing.T) {
	handler := newTestServer(t)
	alice := signup(t, handler, "auth0|alice")
	bob := signup(t, handler, "auth0|bob")

	wf := createTestWorkflow(t, handler, alice)

	// Bob cannot see, change, or delete Alice's workflow.
	if w := do(t, handler, "GET", "/api/workflows/"+wf.ID, bob, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign get, got %d", w.Code)
	}
	if w := do(t, handler, "POST", "/api/workflows/"+wf.ID+"/toggle", bob, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign toggle, got %d", w.Code)
	}
	if w := do(t, handler, "DELETE", "/api/workflows/"+wf.ID, bob, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign delete, got %d", w.Code)
	}

	// Bob's list is empty.
	w := do(t, handler, "GET", "/api/workflows", bob, nil)
	var list []flowforge.Workflow
	decode(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list for bob, got %+v", list)
	}
}

func TestRunWorkflow(t *testing.T) {
	handler := newTestServer(t)
	token := signup(t, handler, "auth0|abc")
	wf := createTestWorkflow(t, handler, token)

	w := do(t, handler, "POST", "/api/workflows/"+wf.ID+"/run", token, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decode(t, w, &resp)
	if !strings.HasPrefix(resp["job_id"], "workflow-"+wf.ID+"-") {
		t.Fatalf("unexpected job ID: %q", resp["job_id"])
	}

	// The enqueued job shows up as waiting.
	w = do(t, handler, "GET", "/api/queue/status", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("queue status: expected 200, got %d", w.Code)
	}
	var snap flowforge.QueueSnapshot
	decode(t, w, &snap)
	if snap.Waiting != 1 {
		t.Fatalf("expected 1 waiting job, got %+v", snap)
	}
}

func TestRunInactiveWorkflow(t *testing.T) {
	handler := newTestServer(t)
	token := signup(t, handler, "auth0|abc")
	wf := createTestWorkflow(t, handler, token)

	if w := do(t, handler, "POST", "/api/workflows/"+wf.ID+"/toggle", token, nil); w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", w.Code)
	}

	w := do(t, handler, "POST", "/api/workflows/"+wf.ID+"/run", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an inactive workflow, got %d", w.Code)
	}
}

func TestListWorkflowRuns(t *testing.T) {
	handler := newTestServer(t)
	token := signup(t, handler, "auth0|abc")
	wf := createTestWorkflow(t, handler, token)

	w := do(t, handler, "GET", "/api/workflows/"+wf.ID+"/runs", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Runs  []flowforge.WorkflowRun `json:"runs"`
		Total int                     `json:"total"`
	}
	decode(t, w, &resp)
	if resp.Total != 0 || len(resp.Runs) != 0 {
		t.Fatalf("expected no runs yet, got %+v", resp)
	}
}
