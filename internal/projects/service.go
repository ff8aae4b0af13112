// Package projects manages the top-level containers every other record
// belongs to, including the cascading delete of their contents.
package projects

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/respond"
	"github.com/ayush/research-workspace/backend/internal/store"
)

// ObjectRemover deletes stored document originals.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

type Service struct {
	store store.RecordStore
	files ObjectRemover
	guard *ownership.Guard
	log   *zap.Logger
}

func NewService(s store.RecordStore, files ObjectRemover, guard *ownership.Guard, log *zap.Logger) *Service {
	return &Service{store: s, files: files, guard: guard, log: log}
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Project, error) {
	projects, err := s.store.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch projects", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	return s.guard.Project(ctx, id, userID)
}

func (s *Service) Create(ctx context.Context, userID string, req models.CreateProjectRequest) (*models.Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := respond.Validate(req); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProject(ctx, &models.Project{
		UserID:      userID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create project", err)
	}
	s.log.Info("project created", zap.String("project_id", p.ID), zap.String("user_id", userID))
	return p, nil
}

// Update changes the fields present in upd. A present but blank title is
// rejected.
func (s *Service) Update(ctx context.Context, userID, id string, upd models.ProjectUpdate) error {
	if _, err := s.guard.Project(ctx, id, userID); err != nil {
		return err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return apperr.Validation("title cannot be empty")
		}
		upd.Title = &t
	}
	if upd.Title == nil && upd.Description == nil {
		return nil
	}
	if err := s.store.UpdateProject(ctx, id, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Project")
		}
		return apperr.Internal("Failed to update project", err)
	}
	return nil
}

// Delete removes a project and everything in it. The project record goes
// last, so a failed cascade can be finished by deleting again.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.guard.Project(ctx, id, userID); err != nil {
		return err
	}
	return s.cascade(ctx, id)
}

func (s *Service) cascade(ctx context.Context, projectID string) error {
	log := s.log.With(zap.String("project_id", projectID))

	sessions, err := s.store.DeleteResearchSessionsByProject(ctx, projectID)
	if err != nil {
		return apperr.Internal("Failed to delete project", err)
	}

	docs, err := s.store.ListDocuments(ctx, projectID)
	if err != nil {
		return apperr.Internal("Failed to delete project", err)
	}
	for _, d := range docs {
		if d.FileKey == "" {
			continue
		}
		if err := s.files.Remove(ctx, d.FileKey); err != nil {
			log.Warn("document file removal failed", zap.String("document_id", d.ID), zap.Error(err))
		}
	}
	ndocs, err := s.store.DeleteDocumentsByProject(ctx, projectID)
	if err != nil {
		return apperr.Internal("Failed to delete project", err)
	}

	reports, err := s.store.DeleteReportsByProject(ctx, projectID)
	if err != nil {
		return apperr.Internal("Failed to delete project", err)
	}

	if err := s.store.DeleteProject(ctx, projectID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal("Failed to delete project", err)
	}
	log.Info("project deleted",
		zap.Int64("research_sessions", sessions),
		zap.Int64("documents", ndocs),
		zap.Int64("reports", reports),
	)
	return nil
}

// PurgeUser cascades every project userID owns and reports how many were
// removed.
func (s *Service) PurgeUser(ctx context.Context, userID string) (int, error) {
	projects, err := s.store.ListProjectsByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("Failed to delete account", err)
	}
	for i, p := range projects {
		if err := s.cascade(ctx, p.ID); err != nil {
			return i, err
		}
	}
	return len(projects), nil
}
