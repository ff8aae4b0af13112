// Package memory is an in-process RecordStore. It backs the test suites and
// RECORD_STORE=memory local runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/store"
)

type Store struct {
	mu        sync.RWMutex
	projects  map[string]models.Project
	sessions  map[string]models.ResearchSession
	documents map[string]models.Document
	reports   map[string]models.Report

	// clock is overridable so tests can control ordering.
	clock func() time.Time
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{
		projects:  map[string]models.Project{},
		sessions:  map[string]models.ResearchSession{},
		documents: map[string]models.Document{},
		reports:   map[string]models.Report{},
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func get[T any](s *Store, m map[string]T, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func list[T any](s *Store, m map[string]T, match func(T) bool, created func(T) time.Time) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []T{}
	for _, v := range m {
		if match(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return created(out[i]).After(created(out[j])) })
	return out
}

func remove[T any](s *Store, m map[string]T, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

func removeWhere[T any](s *Store, m map[string]T, match func(T) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, v := range m {
		if match(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

// stamp returns a fresh id and creation time. Callers hold no lock.
func (s *Store) stamp() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uuid.NewString(), s.clock()
}

// ── Projects ────────────────────────────────────────────────

func (s *Store) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	p.ID, p.CreatedAt = s.stamp()
	p.UpdatedAt = p.CreatedAt
	s.mu.Lock()
	s.projects[p.ID] = *p
	s.mu.Unlock()
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (*models.Project, error) {
	return get(s, s.projects, id)
}

func (s *Store) ListProjectsByUser(_ context.Context, userID string) ([]models.Project, error) {
	return list(s, s.projects,
		func(p models.Project) bool { return p.UserID == userID },
		func(p models.Project) time.Time { return p.CreatedAt }), nil
}

func (s *Store) UpdateProject(_ context.Context, id string, upd models.ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.UpdatedAt = s.clock()
	s.projects[id] = p
	return nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	return remove(s, s.projects, id)
}

// ── Research sessions ───────────────────────────────────────

func (s *Store) InsertResearchSession(_ context.Context, rs *models.ResearchSession) (*models.ResearchSession, error) {
	rs.ID, rs.CreatedAt = s.stamp()
	rs.UpdatedAt = rs.CreatedAt
	s.mu.Lock()
	s.sessions[rs.ID] = *rs
	s.mu.Unlock()
	return rs, nil
}

func (s *Store) GetResearchSession(_ context.Context, id string) (*models.ResearchSession, error) {
	return get(s, s.sessions, id)
}

func (s *Store) ListResearchSessions(_ context.Context, projectID string) ([]models.ResearchSession, error) {
	return list(s, s.sessions,
		func(v models.ResearchSession) bool { return v.ProjectID == projectID },
		func(v models.ResearchSession) time.Time { return v.CreatedAt }), nil
}

func (s *Store) DeleteResearchSession(_ context.Context, id string) error {
	return remove(s, s.sessions, id)
}

func (s *Store) DeleteResearchSessionsByProject(_ context.Context, projectID string) (int64, error) {
	return removeWhere(s, s.sessions, func(v models.ResearchSession) bool { return v.ProjectID == projectID }), nil
}

// ── Documents ───────────────────────────────────────────────

func (s *Store) InsertDocument(_ context.Context, d *models.Document) (*models.Document, error) {
	d.ID, d.CreatedAt = s.stamp()
	d.UpdatedAt = d.CreatedAt
	s.mu.Lock()
	s.documents[d.ID] = *d
	s.mu.Unlock()
	return d, nil
}

func (s *Store) GetDocument(_ context.Context, id string) (*models.Document, error) {
	return get(s, s.documents, id)
}

func (s *Store) ListDocuments(_ context.Context, projectID string) ([]models.Document, error) {
	return list(s, s.documents,
		func(v models.Document) bool { return v.ProjectID == projectID },
		func(v models.Document) time.Time { return v.CreatedAt }), nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	return remove(s, s.documents, id)
}

func (s *Store) DeleteDocumentsByProject(_ context.Context, projectID string) (int64, error) {
	return removeWhere(s, s.documents, func(v models.Document) bool { return v.ProjectID == projectID }), nil
}

// ── Reports ─────────────────────────────────────────────────

func (s *Store) InsertReport(_ context.Context, r *models.Report) (*models.Report, error) {
	r.ID, r.CreatedAt = s.stamp()
	r.UpdatedAt = r.CreatedAt
	s.mu.Lock()
	s.reports[r.ID] = *r
	s.mu.Unlock()
	return r, nil
}

func (s *Store) GetReport(_ context.Context, id string) (*models.Report, error) {
	return get(s, s.reports, id)
}

func (s *Store) ListReports(_ context.Context, projectID string) ([]models.Report, error) {
	return list(s, s.reports,
		func(v models.Report) bool { return v.ProjectID == projectID },
		func(v models.Report) time.Time { return v.CreatedAt }), nil
}

func (s *Store) DeleteReport(_ context.Context, id string) error {
	return remove(s, s.reports, id)
}

func (s *Store) DeleteReportsByProject(_ context.Context, projectID string) (int64, error) {
	return removeWhere(s, s.reports, func(v models.Report) bool { return v.ProjectID == projectID }), nil
}
