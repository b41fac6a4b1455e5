package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
	"github.com/Atri9Ghosh/FlowForge/internal/services"
)

// createWorkflow creates a workflow for the caller.
// POST /api/workflows
func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var in services.WorkflowInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wf, err := s.workflowSvc.Create(r.Context(), user.ID, in)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

// listWorkflows returns the caller's workflows, newest first.
// GET /api/workflows
func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	workflows, err := s.workflowSvc.List(r.Context(), user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if workflows == nil {
		workflows = []*flowforge.Workflow{}
	}
	writeJSON(w, http.StatusOK, workflows)
}

// getWorkflow returns one of the caller's workflows.
// GET /api/workflows/{id}
func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	wf, err := s.workflowSvc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// updateWorkflow replaces the editable fields of the caller's workflow.
// PUT /api/workflows/{id}
func (s *Server) updateWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var in services.WorkflowInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wf, err := s.workflowSvc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// deleteWorkflow removes the caller's workflow.
// DELETE /api/workflows/{id}
func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.workflowSvc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeWorkflowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleWorkflow flips the caller's workflow between active and inactive.
// POST /api/workflows/{id}/toggle
func (s *Server) toggleWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	wf, err := s.workflowSvc.Toggle(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// runWorkflow enqueues an execution of the caller's workflow.
// POST /api/workflows/{id}/run
func (s *Server) runWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	wf, err := s.workflowSvc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if !wf.IsActive {
		http.Error(w, "workflow is inactive", http.StatusConflict)
		return
	}

	jobID, err := s.queue.Enqueue(r.Context(), wf.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// listWorkflowRuns returns run history for the caller's workflow.
// GET /api/workflows/{id}/runs?limit=20&offset=0
func (s *Server) listWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	wf, err := s.workflowSvc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	limit, offset := parsePagination(r)
	runs, total, err := s.runHistorySvc.ListRuns(r.Context(), wf.ID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": total,
	})
}

// writeWorkflowError maps service errors to status codes: not-found (which
// covers not-owned) to 404, validation to 400, everything else to 500.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "workflow not found", http.StatusNotFound)
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
