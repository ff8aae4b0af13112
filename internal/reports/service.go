// Package reports synthesizes research sessions and documents of one project
// into a single model-written report.
package reports

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

type ReportStore interface {
	GetResearchSession(ctx context.Context, id string) (*models.ResearchSession, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	InsertReport(ctx context.Context, r *models.Report) (*models.Report, error)
	ListReports(ctx context.Context, projectID string) ([]models.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

type Service struct {
	store ReportStore
	guard *ownership.Guard
	gen   ai.Generator
	log   *zap.Logger
}

func NewService(s ReportStore, guard *ownership.Guard, gen ai.Generator, log *zap.Logger) *Service {
	return &Service{store: s, guard: guard, gen: gen, log: log}
}

// Generate builds a report from the selected sessions and documents. Ids
// that do not exist or belong to another project are left out; the stored
// report lists only the ids that were used.
func (s *Service) Generate(ctx context.Context, userID string, req models.GenerateReportRequest) (*models.Report, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if err := respond.Validate(req); err != nil {
		return nil, err
	}
	sessionIDs, docIDs := dedupe(req.ResearchSessionIDs), dedupe(req.DocumentIDs)
	if len(sessionIDs) == 0 && len(docIDs) == 0 {
		return nil, apperr.Validation("Select at least one research session or document")
	}
	if _, err := s.guard.Project(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("project_id", req.ProjectID), zap.String("user_id", userID))

	sessions, err := collect(ctx, sessionIDs, req.ProjectID, s.store.GetResearchSession,
		func(rs *models.ResearchSession) string { return rs.ProjectID })
	if err != nil {
		return nil, err
	}
	docs, err := collect(ctx, docIDs, req.ProjectID, s.store.GetDocument,
		func(d *models.Document) string { return d.ProjectID })
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 && len(docs) == 0 {
		return nil, apperr.Validation("None of the selected items belong to this project")
	}
	log.Info("report generation started",
		zap.Int("sessions", len(sessions)),
		zap.Int("documents", len(docs)),
		zap.Int("skipped", len(sessionIDs)+len(docIDs)-len(sessions)-len(docs)),
	)

	var fields models.ReportFields
	if err := ai.Complete(ctx, s.gen, log, ai.BuildReportPrompt(req.Title, sessions, docs), ai.ReportShape, &fields); err != nil {
		return nil, err
	}

	usedSessions := make([]string, 0, len(sessions))
	for _, rs := range sessions {
		usedSessions = append(usedSessions, rs.ID)
	}
	usedDocs := make([]string, 0, len(docs))
	for _, d := range docs {
		usedDocs = append(usedDocs, d.ID)
	}

	saved, err := s.store.InsertReport(ctx, &models.Report{
		ProjectID:          req.ProjectID,
		UserID:             userID,
		Title:              req.Title,
		ResearchSessionIDs: usedSessions,
		DocumentIDs:        usedDocs,
		ReportFields:       fields,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to save report", err)
	}
	log.Info("report stored", zap.String("report_id", saved.ID))
	return saved, nil
}

// collect loads ids in order, dropping missing records and records from
// other projects.
func collect[T any](ctx context.Context, ids []string, projectID string,
	load func(context.Context, string) (*T, error), project func(*T) string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		rec, err := load(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal("Failed to load report inputs", err)
		}
		if project(rec) != projectID {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *Service) List(ctx context.Context, userID, projectID string) ([]models.Report, error) {
	if _, err := s.guard.Project(ctx, projectID, userID); err != nil {
		return nil, err
	}
	reports, err := s.store.ListReports(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch reports", err)
	}
	return reports, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Report, error) {
	return s.guard.Report(ctx, id, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.guard.Report(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteReport(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Report")
		}
		return apperr.Internal("Failed to delete report", err)
	}
	return nil
}
