package research

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/respond"
)

// Handler holds research HTTP handlers.
type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the research endpoints. Callers apply auth.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{projectId}", h.List)
	r.Get("/session/{id}", h.Get)
	r.Delete("/session/{id}", h.Delete)
}

// Create runs the research pipeline and returns the stored session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	var req models.CreateResearchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	session, err := h.svc.Run(r.Context(), uid, req)
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "session", session)
}

// List returns every session in a project.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	sessions, err := h.svc.List(r.Context(), uid, chi.URLParam(r, "projectId"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "sessions", sessions)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	session, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "session", session)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "message", "Research session deleted successfully")
}
