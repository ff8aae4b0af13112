package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

// Identity is the verified requester attached to every authenticated request.
type Identity struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// RequesterID returns the authenticated user id or an Unauthenticated error.
func RequesterID(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", apperr.Unauthenticated("not authenticated")
	}
	return id.UserID, nil
}

// Verifier turns a bearer credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// TokenVerifier accepts HS256 JWTs issued by an external identity provider.
// The subject claim is the user id.
type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *TokenVerifier) Verify(_ context.Context, raw string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &tokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, apperr.Unauthenticated("token has no subject")
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// chain sends JWT-shaped credentials to tokens (when configured) and
// everything else to sessions.
type chain struct {
	sessions Verifier
	tokens   Verifier
}

// NewChain combines session and token verification. tokens may be nil.
func NewChain(sessions, tokens Verifier) Verifier {
	return &chain{sessions: sessions, tokens: tokens}
}

func (c *chain) Verify(ctx context.Context, credential string) (*Identity, error) {
	if c.tokens != nil && looksLikeJWT(credential) {
		return c.tokens.Verify(ctx, credential)
	}
	return c.sessions.Verify(ctx, credential)
}

func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2
}
