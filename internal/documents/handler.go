package documents

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/respond"
)

// multipartOverhead leaves room for the form fields around the file part.
const multipartOverhead = 1 << 20

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/summarize", h.Summarize)
	r.Get("/{projectId}", h.List)
	r.Get("/doc/{id}", h.Get)
	r.Get("/doc/{id}/file", h.Download)
	r.Delete("/doc/{id}", h.Delete)
}

// Summarize accepts multipart form data with a "file" part and a
// "projectId" field.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.svc.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(h.svc.MaxBytes()); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, h.log, r, apperr.Validation(tooLarge(h.svc.MaxBytes())))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			respond.Error(w, h.log, r, apperr.Validation("invalid multipart form"))
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var up *Upload
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		up = &Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respond.Error(w, h.log, r, apperr.Validation("invalid file upload"))
		return
	}

	doc, err := h.svc.Summarize(r.Context(), uid, r.FormValue("projectId"), up)
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "document", doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	docs, err := h.svc.List(r.Context(), uid, chi.URLParam(r, "projectId"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "documents", docs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	doc, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "document", doc)
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
	respond.OK(w, http.StatusOK, "message", "Document deleted successfully")
}

// Download streams the original PDF.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	doc, data, err := h.svc.File(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}
	w.Header().Set("Content-Type", PDFContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Write(data)
}
