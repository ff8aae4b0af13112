package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
)

type mapVerifier map[string]string

func (m mapVerifier) Verify(_ context.Context, cred string) (*auth.Identity, error) {
	uid, ok := m[cred]
	if !ok {
		return nil, apperr.Unauthenticated("session expired")
	}
	return &auth.Identity{UserID: uid}, nil
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.RequesterID(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(uid))
	})
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(mapVerifier{"good": "user-1"}, zap.NewNop())(protected())

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"no credential", func(*http.Request) {}, http.StatusUnauthorized, `"success":false`},
		{"unknown bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, "session expired"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "good"}) }, http.StatusOK, "user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestLoggerRecordsStatusAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logger(zap.New(core)))
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/missing", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
