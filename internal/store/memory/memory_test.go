package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/store"
)

func tickingClock() func() time.Time {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestProjects_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SetClock(tickingClock())

	p, err := s.CreateProject(ctx, &models.Project{UserID: "u1", Title: "Bees"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	title := "Wasps"
	require.NoError(t, s.UpdateProject(ctx, p.ID, models.ProjectUpdate{Title: &title}))
	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wasps", got.Title)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	assert.ErrorIs(t, s.UpdateProject(ctx, "missing", models.ProjectUpdate{}), store.ErrNotFound)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProject(ctx, p.ID), store.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SetClock(tickingClock())

	first, _ := s.InsertResearchSession(ctx, &models.ResearchSession{ProjectID: "p1", Topic: "first"})
	second, _ := s.InsertResearchSession(ctx, &models.ResearchSession{ProjectID: "p1", Topic: "second"})
	_, _ = s.InsertResearchSession(ctx, &models.ResearchSession{ProjectID: "p2", Topic: "other"})

	got, err := s.ListResearchSessions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	empty, err := s.ListReports(ctx, "p1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDeleteByProject(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.InsertDocument(ctx, &models.Document{ProjectID: "p1"})
	_, _ = s.InsertDocument(ctx, &models.Document{ProjectID: "p1"})
	keep, _ := s.InsertDocument(ctx, &models.Document{ProjectID: "p2"})

	n, err := s.DeleteDocumentsByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.DeleteDocumentsByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.GetDocument(ctx, keep.ID)
	assert.NoError(t, err)
}
