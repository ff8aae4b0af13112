package store

import (
	"context"
	"errors"

	"github.com/ayush/research-workspace/backend/internal/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore is the project-scoped document store. MongoStore is the
// production implementation; memory.Store backs tests and local runs.
type RecordStore interface {
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, upd models.ProjectUpdate) error
	DeleteProject(ctx context.Context, id string) error

	InsertResearchSession(ctx context.Context, s *models.ResearchSession) (*models.ResearchSession, error)
	GetResearchSession(ctx context.Context, id string) (*models.ResearchSession, error)
	ListResearchSessions(ctx context.Context, projectID string) ([]models.ResearchSession, error)
	DeleteResearchSession(ctx context.Context, id string) error
	DeleteResearchSessionsByProject(ctx context.Context, projectID string) (int64, error)

	InsertDocument(ctx context.Context, d *models.Document) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	DeleteDocumentsByProject(ctx context.Context, projectID string) (int64, error)

	InsertReport(ctx context.Context, r *models.Report) (*models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context, projectID string) ([]models.Report, error)
	DeleteReport(ctx context.Context, id string) error
	DeleteReportsByProject(ctx context.Context, projectID string) (int64, error)
}
