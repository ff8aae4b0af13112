// Package documents summarizes uploaded PDFs with the model and keeps the
// originals in object storage.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/ai"
	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/pdftext"
	"github.com/ayush/research-workspace/backend/internal/store"
)

const (
	PDFContentType = "application/pdf"
	// MinTextChars is the shortest extracted text worth summarizing.
	MinTextChars = 100
)

// DocumentStore defines the persistence the document pipeline needs.
type DocumentStore interface {
	InsertDocument(ctx context.Context, d *models.Document) (*models.Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// FileStore defines the interface for file storage.
type FileStore interface {
	UploadFile(ctx context.Context, key, path, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Upload is one multipart file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	store     DocumentStore
	files     FileStore
	guard     *ownership.Guard
	gen       ai.Generator
	pdf       pdftext.Extractor
	uploadDir string
	maxBytes  int64
	log       *zap.Logger
}

type Options struct {
	UploadDir string
	MaxBytes  int64
}

func NewService(s DocumentStore, files FileStore, guard *ownership.Guard, gen ai.Generator, pdf pdftext.Extractor, opts Options, log *zap.Logger) *Service {
	return &Service{
		store:     s,
		files:     files,
		guard:     guard,
		gen:       gen,
		pdf:       pdf,
		uploadDir: opts.UploadDir,
		maxBytes:  opts.MaxBytes,
		log:       log,
	}
}

// MaxBytes is the largest accepted upload.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Summarize validates the upload, extracts its text, asks the model for a
// summary and stores both the original file and the summary record. The
// temporary copy on disk is removed on every path.
func (s *Service) Summarize(ctx context.Context, userID, projectID string, up *Upload) (*models.Document, error) {
	projectID = strings.TrimSpace(projectID)
	if up == nil || up.Body == nil {
		return nil, apperr.Validation("No file uploaded")
	}
	if !isPDF(up.ContentType) {
		return nil, apperr.Validation("Only PDF files are allowed")
	}
	if up.Size > s.maxBytes {
		return nil, apperr.Validation(tooLarge(s.maxBytes))
	}
	if projectID == "" {
		return nil, apperr.Validation("projectId is required")
	}
	if _, err := s.guard.Project(ctx, projectID, userID); err != nil {
		return nil, err
	}

	log := s.log.With(
		zap.String("project_id", projectID),
		zap.String("user_id", userID),
		zap.String("filename", up.Filename),
	)

	path, size, err := s.spool(up.Body)
	if path != "" {
		defer func() {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn("temp file cleanup failed", zap.String("path", path), zap.Error(rmErr))
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	text, err := s.pdf.Extract(path)
	if err != nil {
		return nil, apperr.As(err)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextChars {
		return nil, apperr.EmptyDocument()
	}
	log.Info("pdf text extracted", zap.Int("chars", utf8.RuneCountInString(text)))

	var fields models.SummaryFields
	if err := ai.Complete(ctx, s.gen, log, ai.BuildDocumentPrompt(text), ai.DocumentShape, &fields); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s.pdf", userID, projectID, uuid.New().String())
	if err := s.files.UploadFile(ctx, key, path, PDFContentType); err != nil {
		return nil, apperr.Internal("Failed to store document", err)
	}

	saved, err := s.store.InsertDocument(ctx, &models.Document{
		ProjectID:     projectID,
		UserID:        userID,
		Filename:      up.Filename,
		FileSize:      size,
		FileType:      PDFContentType,
		FileKey:       key,
		SummaryFields: fields,
		TextLength:    utf8.RuneCountInString(text),
	})
	if err != nil {
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			log.Warn("orphaned object after failed insert", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, apperr.Internal("Failed to save document", err)
	}
	log.Info("document stored", zap.String("document_id", saved.ID), zap.Int64("bytes", size))
	return saved, nil
}

// spool copies body into a temp file under uploadDir. The returned path is
// set whenever the file was created, even on error.
func (s *Service) spool(body io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(s.uploadDir, "upload-*.pdf")
	if err != nil {
		return "", 0, apperr.Internal("Failed to store upload", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return f.Name(), n, apperr.Internal("Failed to store upload", err)
	}
	if n > s.maxBytes {
		return f.Name(), n, apperr.Validation(tooLarge(s.maxBytes))
	}
	return f.Name(), n, nil
}

// List returns a project's documents, newest first.
func (s *Service) List(ctx context.Context, userID, projectID string) ([]models.Document, error) {
	if _, err := s.guard.Project(ctx, projectID, userID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch documents", err)
	}
	return docs, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Document, error) {
	return s.guard.Document(ctx, id, userID)
}

// Delete removes the stored original (best effort) and then the record.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.guard.Document(ctx, id, userID)
	if err != nil {
		return err
	}
	if doc.FileKey != "" {
		if err := s.files.Remove(ctx, doc.FileKey); err != nil {
			s.log.Warn("document file removal failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Document")
		}
		return apperr.Internal("Failed to delete document", err)
	}
	return nil
}

// File returns the original upload for a document the requester owns.
func (s *Service) File(ctx context.Context, userID, id string) (*models.Document, []byte, error) {
	doc, err := s.guard.Document(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if doc.FileKey == "" {
		return nil, nil, apperr.NotFound("File")
	}
	data, _, err := s.files.Download(ctx, doc.FileKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("File")
	}
	if err != nil {
		return nil, nil, apperr.Internal("Failed to download file", err)
	}
	return doc, data, nil
}

func isPDF(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == PDFContentType
}

func tooLarge(max int64) string {
	return fmt.Sprintf("File exceeds the %d MB limit", max>>20)
}
