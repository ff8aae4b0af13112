package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

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
	r.Post("/generate", h.Generate)
	r.Get("/view/{id}", h.Get)
	r.Get("/{projectId}", h.List)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	var req models.GenerateReportRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	report, err := h.svc.Generate(r.Context(), uid, req)
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "report", report)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	reports, err := h.svc.List(r.Context(), uid, chi.URLParam(r, "projectId"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "reports", reports)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	report, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "report", report)
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
	respond.OK(w, http.StatusOK, "message", "Report deleted successfully")
}
