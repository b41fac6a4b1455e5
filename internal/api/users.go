package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// createUser registers an account for the verified caller. Identity comes
// from the token, never the body; repeating signup returns the existing
// account.
// POST /api/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if r.Body != nil {
		// An empty body is fine; email and name are optional.
		json.NewDecoder(r.Body).Decode(&in)
	}

	externalID := caller(r)
	if existing, err := s.users.GetByExternalID(r.Context(), externalID); err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	u := &flowforge.User{
		ID:         "user-" + uuid.NewString(),
		ExternalID: externalID,
		Email:      in.Email,
		Name:       in.Name,
		CreatedAt:  time.Now(),
	}
	if err := s.users.Create(r.Context(), u); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// getProfile returns the caller's account.
// GET /api/users/me
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByExternalID(r.Context(), caller(r))
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
