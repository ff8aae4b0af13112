package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/store/memory"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

const researchJSON = "```json\n" + `{
  "overview": "Solid-state batteries replace liquid electrolytes.",
  "deep_explanations": [{"title": "Electrolytes", "content": "Ceramic and polymer."}],
  "sources": [{"title": "Review", "url": "https://example.org", "description": "Survey"}],
  "key_findings": ["Higher energy density"]
}` + "\n```"

func setup(t *testing.T, gen *fakeGenerator) (*Service, *memory.Store, *models.Project) {
	t.Helper()
	s := memory.New()
	p, err := s.CreateProject(context.Background(), &models.Project{UserID: "alice", Title: "Batteries"})
	require.NoError(t, err)
	return NewService(s, ownership.NewGuard(s), gen, zap.NewNop()), s, p
}

func TestRun_StoresSessionForOwner(t *testing.T) {
	gen := &fakeGenerator{text: researchJSON}
	svc, s, p := setup(t, gen)

	rs, err := svc.Run(context.Background(), "alice", models.CreateResearchRequest{Topic: "  solid-state batteries ", ProjectID: p.ID})
	require.NoError(t, err)

	assert.Equal(t, p.ID, rs.ProjectID)
	assert.Equal(t, "alice", rs.UserID)
	assert.Equal(t, "solid-state batteries", rs.Topic)
	assert.Len(t, rs.Sources, 1)
	assert.NotEmpty(t, rs.ID)
	assert.False(t, rs.CreatedAt.IsZero())
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"solid-state batteries"`)

	stored, err := s.ListResearchSessions(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRun_Failures(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
		user string
		req  func(p *models.Project) models.CreateResearchRequest
		kind apperr.Kind
	}{
		{
			name: "missing topic",
			gen:  &fakeGenerator{text: researchJSON},
			user: "alice",
			req:  func(p *models.Project) models.CreateResearchRequest { return models.CreateResearchRequest{Topic: "  ", ProjectID: p.ID} },
			kind: apperr.KindValidation,
		},
		{
			name: "unknown project",
			gen:  &fakeGenerator{text: researchJSON},
			user: "alice",
			req:  func(*models.Project) models.CreateResearchRequest { return models.CreateResearchRequest{Topic: "x", ProjectID: "nope"} },
			kind: apperr.KindNotFound,
		},
		{
			name: "not the owner",
			gen:  &fakeGenerator{text: researchJSON},
			user: "bob",
			req:  func(p *models.Project) models.CreateResearchRequest { return models.CreateResearchRequest{Topic: "x", ProjectID: p.ID} },
			kind: apperr.KindForbidden,
		},
		{
			name: "model failure",
			gen:  &fakeGenerator{err: apperr.Upstream(503, errors.New("overloaded"))},
			user: "alice",
			req:  func(p *models.Project) models.CreateResearchRequest { return models.CreateResearchRequest{Topic: "x", ProjectID: p.ID} },
			kind: apperr.KindUpstream,
		},
		{
			name: "malformed output",
			gen:  &fakeGenerator{text: "I cannot help with that."},
			user: "alice",
			req:  func(p *models.Project) models.CreateResearchRequest { return models.CreateResearchRequest{Topic: "x", ProjectID: p.ID} },
			kind: apperr.KindMalformedAI,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, s, p := setup(t, tc.gen)
			_, err := svc.Run(context.Background(), tc.user, tc.req(p))
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tc.kind), err.Error())

			stored, _ := s.ListResearchSessions(context.Background(), p.ID)
			assert.Empty(t, stored)
		})
	}
}

func TestRun_ForbiddenNeverCallsModel(t *testing.T) {
	gen := &fakeGenerator{text: researchJSON}
	svc, _, p := setup(t, gen)
	_, err := svc.Run(context.Background(), "bob", models.CreateResearchRequest{Topic: "x", ProjectID: p.ID})
	require.Error(t, err)
	assert.Empty(t, gen.prompts)
}

func TestDelete(t *testing.T) {
	svc, _, p := setup(t, &fakeGenerator{text: researchJSON})
	ctx := context.Background()
	rs, err := svc.Run(ctx, "alice", models.CreateResearchRequest{Topic: "x", ProjectID: p.ID})
	require.NoError(t, err)

	assert.True(t, apperr.IsKind(svc.Delete(ctx, "bob", rs.ID), apperr.KindForbidden))
	require.NoError(t, svc.Delete(ctx, "alice", rs.ID))
	assert.True(t, apperr.IsKind(svc.Delete(ctx, "alice", rs.ID), apperr.KindNotFound))
}

func router(svc *Service, uid string) http.Handler {
	h := NewHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: uid})))
		})
	})
	r.Route("/api/research", h.Routes)
	return r
}

func TestHandler(t *testing.T) {
	svc, _, p := setup(t, &fakeGenerator{text: researchJSON})
	alice := router(svc, "alice")

	body, _ := json.Marshal(map[string]string{"topic": "batteries", "projectId": p.ID})
	rec := httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Success bool                   `json:"success"`
		Session models.ResearchSession `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/"+p.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.Session.ID)

	rec = httptest.NewRecorder()
	router(svc, "bob").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/"+p.ID, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Access denied"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/session/"+created.Session.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/research/session/"+created.Session.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/research/session/"+created.Session.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MissingFields(t *testing.T) {
	svc, _, _ := setup(t, &fakeGenerator{text: researchJSON})
	rec := httptest.NewRecorder()
	router(svc, "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research/", bytes.NewReader([]byte(`{"topic":"x"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "projectId is required")
}
