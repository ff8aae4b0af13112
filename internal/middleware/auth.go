package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/respond"
)

// RequireAuth verifies the bearer token (or session cookie) and injects the
// resulting identity into the request context.
func RequireAuth(v auth.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := auth.Credential(r)
			if cred == "" {
				respond.Error(w, log, r, apperr.Unauthenticated("not authenticated"))
				return
			}

			id, err := v.Verify(r.Context(), cred)
			if err != nil {
				respond.Error(w, log, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
