package projects

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/respond"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	projects, err := h.svc.List(r.Context(), uid)
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "projects", projects)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	var req models.CreateProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), uid, req)
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusCreated, "project", p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	p, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "project", p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	var upd models.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respond.Error(w, h.log, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.svc.Update(r.Context(), uid, chi.URLParam(r, "id"), upd); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "message", "Project updated successfully")
}

// Delete removes the project with its sessions, documents and reports.
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
	respond.OK(w, http.StatusOK, "message", "Project deleted successfully")
}
