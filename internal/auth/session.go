package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// SessionStore wraps Redis for session management. Each session token maps
// to the JSON-encoded Identity; a per-user set tracks live tokens so they
// can all be revoked when the account goes away.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(token string) string { return "session:" + token }
func userKey(userID string) string   { return "user_sessions:" + userID }

// Create stores a new session for id and returns its token.
func (s *SessionStore) Create(ctx context.Context, id Identity) (string, error) {
	token := uuid.New().String()
	payload, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(token), payload, SessionTTL)
	pipe.SAdd(ctx, userKey(id.UserID), token)
	pipe.Expire(ctx, userKey(id.UserID), SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redis create session: %w", err)
	}
	return token, nil
}

// Get returns the identity for a token, or nil if not found / expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*Identity, error) {
	val, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(val, &id); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &id, nil
}

// Verify implements Verifier for session tokens.
func (s *SessionStore) Verify(ctx context.Context, token string) (*Identity, error) {
	id, err := s.Get(ctx, token)
	if err != nil {
		return nil, apperr.Internal("session lookup failed", err)
	}
	if id == nil || id.UserID == "" {
		return nil, apperr.Unauthenticated("session expired")
	}
	return id, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	id, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	if id != nil {
		pipe.SRem(ctx, userKey(id.UserID), token)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll removes every session belonging to userID.
func (s *SessionStore) RevokeAll(ctx context.Context, userID string) error {
	tokens, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis list sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, userKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
