package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Atri9Ghosh/FlowForge/internal/integration"
	"github.com/Atri9Ghosh/FlowForge/internal/queue"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
	"github.com/Atri9Ghosh/FlowForge/internal/services"
)

// Server exposes the workflow automation API over HTTP. Everything under
// /api except signup requires a verified bearer token; the core below the
// handlers only ever sees the resolved opaque user ID.
type Server struct {
	workflowSvc   *services.WorkflowService
	runHistorySvc *services.RunHistoryService
	queue         *queue.Queue
	users         repository.UserRepository
	registry      *integration.Registry
	authSecret    []byte
}

// NewServer creates a Server.
func NewServer(
	workflowSvc *services.WorkflowService,
	runHistorySvc *services.RunHistoryService,
	q *queue.Queue,
	users repository.UserRepository,
	registry *integration.Registry,
	authSecret []byte,
) *Server {
	return &Server{
		workflowSvc:   workflowSvc,
		runHistorySvc: runHistorySvc,
		queue:         q,
		users:         users,
		registry:      registry,
		authSecret:    authSecret,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.createWorkflow)
			r.Get("/", s.listWorkflows)
			r.Get("/{id}", s.getWorkflow)
			r.Put("/{id}", s.updateWorkflow)
			r.Delete("/{id}", s.deleteWorkflow)
			r.Post("/{id}/toggle", s.toggleWorkflow)
			r.Post("/{id}/run", s.runWorkflow)
			r.Get("/{id}/runs", s.listWorkflowRuns)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{id}", s.getRun)
		})
		r.Get("/queue/status", s.queueStatus)
		r.Get("/integrations", s.listIntegrations)
		r.Post("/users", s.createUser)
		r.Get("/users/me", s.getProfile)
	})

	// Serve static files (frontend)
	r.Handle("/*", StaticHandler("web/dist"))

	return r
}

// listIntegrations returns the names of the registered integrations.
func (s *Server) listIntegrations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Integrations())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parsePagination extracts limit and offset query parameters with defaults.
func parsePagination(r *http.Request) (int, int) {
	limit := 20
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
