// Package ownership binds every project-scoped read and write to the
// requesting identity. Results are never cached.
package ownership

import (
	"context"
	"errors"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/store"
)

// Store is the subset of the record store the guard loads from.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetResearchSession(ctx context.Context, id string) (*models.ResearchSession, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

type Guard struct {
	store Store
}

func NewGuard(s Store) *Guard {
	return &Guard{store: s}
}

// Project returns the project if it exists and requester owns it.
func (g *Guard) Project(ctx context.Context, id, requester string) (*models.Project, error) {
	p, err := g.store.GetProject(ctx, id)
	if err != nil {
		return nil, loadErr("Project", err)
	}
	if p.UserID != requester {
		return nil, apperr.Forbidden()
	}
	return p, nil
}

// ResearchSession returns the session if requester owns both it and its
// parent project.
func (g *Guard) ResearchSession(ctx context.Context, id, requester string) (*models.ResearchSession, error) {
	rs, err := g.store.GetResearchSession(ctx, id)
	if err != nil {
		return nil, loadErr("Research session", err)
	}
	if err := g.checkChild(ctx, rs.ProjectID, rs.UserID, requester); err != nil {
		return nil, err
	}
	return rs, nil
}

// Document returns the document if requester owns both it and its parent
// project.
func (g *Guard) Document(ctx context.Context, id, requester string) (*models.Document, error) {
	d, err := g.store.GetDocument(ctx, id)
	if err != nil {
		return nil, loadErr("Document", err)
	}
	if err := g.checkChild(ctx, d.ProjectID, d.UserID, requester); err != nil {
		return nil, err
	}
	return d, nil
}

// Report returns the report if requester owns both it and its parent project.
func (g *Guard) Report(ctx context.Context, id, requester string) (*models.Report, error) {
	r, err := g.store.GetReport(ctx, id)
	if err != nil {
		return nil, loadErr("Report", err)
	}
	if err := g.checkChild(ctx, r.ProjectID, r.UserID, requester); err != nil {
		return nil, err
	}
	return r, nil
}

// checkChild verifies the record's own owner and its parent's owner. A child
// whose parent is gone cannot be attributed to anyone and is forbidden.
func (g *Guard) checkChild(ctx context.Context, projectID, ownerID, requester string) error {
	if ownerID != requester {
		return apperr.Forbidden()
	}
	p, err := g.store.GetProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Forbidden()
	}
	if err != nil {
		return apperr.Internal("Failed to verify project ownership", err)
	}
	if p.UserID != requester {
		return apperr.Forbidden()
	}
	return nil
}

func loadErr(what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.Internal("Failed to load "+what, err)
}
