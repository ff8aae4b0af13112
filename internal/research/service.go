package research

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/ai"
	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/respond"
	"github.com/ayush/research-workspace/backend/internal/store"
)

// SessionStore defines the persistence the research pipeline needs.
type SessionStore interface {
	InsertResearchSession(ctx context.Context, s *models.ResearchSession) (*models.ResearchSession, error)
	ListResearchSessions(ctx context.Context, projectID string) ([]models.ResearchSession, error)
	DeleteResearchSession(ctx context.Context, id string) error
}

// Service runs research topics through the model and stores the results.
type Service struct {
	store SessionStore
	guard *ownership.Guard
	gen   ai.Generator
	log   *zap.Logger
}

func NewService(s SessionStore, guard *ownership.Guard, gen ai.Generator, log *zap.Logger) *Service {
	return &Service{store: s, guard: guard, gen: gen, log: log}
}

// Run generates a research session for req.Topic inside req.ProjectID.
// Nothing is persisted unless every earlier stage succeeded.
func (s *Service) Run(ctx context.Context, userID string, req models.CreateResearchRequest) (*models.ResearchSession, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if err := respond.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.guard.Project(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("project_id", req.ProjectID), zap.String("user_id", userID))
	log.Info("research started", zap.String("topic", req.Topic))

	var fields models.ResearchFields
	if err := ai.Complete(ctx, s.gen, log, ai.BuildResearchPrompt(req.Topic), ai.ResearchShape, &fields); err != nil {
		return nil, err
	}

	saved, err := s.store.InsertResearchSession(ctx, &models.ResearchSession{
		ProjectID:      req.ProjectID,
		UserID:         userID,
		Topic:          req.Topic,
		ResearchFields: fields,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to save research session", err)
	}
	log.Info("research stored",
		zap.String("session_id", saved.ID),
		zap.Int("sources", len(saved.Sources)),
		zap.Int("explanations", len(saved.DeepExplanations)),
	)
	return saved, nil
}

// List returns a project's sessions, newest first.
func (s *Service) List(ctx context.Context, userID, projectID string) ([]models.ResearchSession, error) {
	if _, err := s.guard.Project(ctx, projectID, userID); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListResearchSessions(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch research sessions", err)
	}
	return sessions, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.ResearchSession, error) {
	return s.guard.ResearchSession(ctx, id, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.guard.ResearchSession(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteResearchSession(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Research session")
		}
		return apperr.Internal("Failed to delete research session", err)
	}
	return nil
}
