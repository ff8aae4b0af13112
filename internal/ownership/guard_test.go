package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/store/memory"
)

type fixture struct {
	store   *memory.Store
	guard   *Guard
	project *models.Project
	session *models.ResearchSession
	doc     *models.Document
	report  *models.Report
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	p, err := s.CreateProject(ctx, &models.Project{UserID: "alice", Title: "P"})
	require.NoError(t, err)
	rs, _ := s.InsertResearchSession(ctx, &models.ResearchSession{ProjectID: p.ID, UserID: "alice", Topic: "t"})
	d, _ := s.InsertDocument(ctx, &models.Document{ProjectID: p.ID, UserID: "alice", Filename: "a.pdf"})
	r, _ := s.InsertReport(ctx, &models.Report{ProjectID: p.ID, UserID: "alice", Title: "R"})
	return &fixture{store: s, guard: NewGuard(s), project: p, session: rs, doc: d, report: r}
}

func TestGuard_OwnerAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.guard.Project(ctx, f.project.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.project.ID, p.ID)

	rs, err := f.guard.ResearchSession(ctx, f.session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.session.ID, rs.ID)

	d, err := f.guard.Document(ctx, f.doc.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.doc.ID, d.ID)

	r, err := f.guard.Report(ctx, f.report.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.report.ID, r.ID)
}

func TestGuard_StrangerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"project":  func() error { _, err := f.guard.Project(ctx, f.project.ID, "bob"); return err },
		"session":  func() error { _, err := f.guard.ResearchSession(ctx, f.session.ID, "bob"); return err },
		"document": func() error { _, err := f.guard.Document(ctx, f.doc.ID, "bob"); return err },
		"report":   func() error { _, err := f.guard.Report(ctx, f.report.ID, "bob"); return err },
	}
	for name, check := range checks {
		err := check()
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden), name)
	}
}

func TestGuard_Missing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.guard.Project(ctx, "nope", "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = f.guard.ResearchSession(ctx, "nope", "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = f.guard.Document(ctx, "nope", "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = f.guard.Report(ctx, "nope", "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGuard_ChildOwnedButParentNot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a record that claims alice but lives in bob's project
	bobs, _ := f.store.CreateProject(ctx, &models.Project{UserID: "bob"})
	stray, _ := f.store.InsertReport(ctx, &models.Report{ProjectID: bobs.ID, UserID: "alice"})

	_, err := f.guard.Report(ctx, stray.ID, "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestGuard_OrphanForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.DeleteProject(ctx, f.project.ID))

	_, err := f.guard.Document(ctx, f.doc.ID, "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

type failingStore struct{ Store }

func (failingStore) GetProject(context.Context, string) (*models.Project, error) {
	return nil, errors.New("connection refused")
}

func TestGuard_StoreFailureIsInternal(t *testing.T) {
	g := NewGuard(failingStore{})
	_, err := g.Project(context.Background(), "p", "alice")
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}
