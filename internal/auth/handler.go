package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/respond"
	"github.com/ayush/research-workspace/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Sessions is what the handler needs from the session store.
type Sessions interface {
	Create(ctx context.Context, id Identity) (string, error)
	Delete(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
}

// AccountPurger removes every project-scoped record a user owns and reports
// how many projects went with it.
type AccountPurger interface {
	PurgeUser(ctx context.Context, userID string) (int, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions Sessions
	purger   AccountPurger
	log      *zap.Logger
}

func NewHandler(users UserStore, sessions Sessions, purger AccountPurger, log *zap.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, purger: purger, log: log}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, h.log, r, apperr.Internal("internal error", err))
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email, string(hashed))
	if err != nil {
		h.log.Warn("register failed", zap.Error(err))
		respond.Error(w, h.log, r, apperr.Conflict("user already exists"))
		return
	}

	respond.OK(w, http.StatusCreated, "user", user)
}

// Login authenticates a user and creates a session. The session token is
// set as a cookie and also returned for bearer use.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respond.Error(w, h.log, r, apperr.Internal("login failed", err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respond.Error(w, h.log, r, apperr.Unauthenticated("invalid credentials"))
		return
	}

	token, err := h.sessions.Create(r.Context(), Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		respond.Error(w, h.log, r, apperr.Internal("session creation failed", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
	respond.OK(w, http.StatusOK, "user", user, "token", token)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := Credential(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			h.log.Warn("logout: session delete failed", zap.Error(err))
		}
	}
	clearCookie(w)
	respond.OK(w, http.StatusOK, "message", "logged out")
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, err := RequesterID(r.Context())
	if err != nil {
		respond.Error(w, h.log, r, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, h.log, r, apperr.NotFound("User"))
		return
	}
	if err != nil {
		respond.Error(w, h.log, r, apperr.Internal("failed to load user", err))
		return
	}
	respond.OK(w, http.StatusOK, "user", user)
}

// Verify echoes the verified identity.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := FromContext(r.Context())
	if !ok {
		respond.Error(w, h.log, r, apperr.Unauthenticated("not authenticated"))
		return
	}
	respond.OK(w, http.StatusOK, "user", id)
}

// DeleteAccount removes every project (with its sessions, documents and
// reports), then the user row and all of the user's sessions.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := FromContext(r.Context())
	if !ok {
		respond.Error(w, h.log, r, apperr.Unauthenticated("not authenticated"))
		return
	}
	log := h.log.With(zap.String("user_id", id.UserID))
	log.Info("account deletion started")

	n, err := h.purger.PurgeUser(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, log, r, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), id.UserID); err != nil {
		respond.Error(w, log, r, apperr.Internal("Failed to delete account", err))
		return
	}
	if err := h.sessions.RevokeAll(r.Context(), id.UserID); err != nil {
		log.Warn("account deletion: session revoke failed", zap.Error(err))
	}

	log.Info("account deletion complete", zap.Int("projects", n))
	clearCookie(w)
	respond.OK(w, http.StatusOK,
		"message", "Account and all associated data deleted successfully",
		"deletedProjects", n,
	)
}

// Credential extracts the bearer token, falling back to the session cookie.
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && (h[:7] == "Bearer " || h[:7] == "bearer ") {
		return h[7:]
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
