// Package middleware provides HTTP middleware for bearer-token authentication.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/logging"
	"go.uber.org/zap"
)

type contextKey struct{}

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadScheme     = errors.New("authorization header is not a bearer token")
	errNoSubject     = errors.New("token has no subject")

	// ErrNoIdentity is returned by GetUserID outside an authenticated route.
	ErrNoIdentity = errors.New("no authenticated user in request context")
)

// Identity is the account a request was authenticated as.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// TokenValidator turns a bearer token into the Identity it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (Identity, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingHeader
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errBadScheme
	}
	return parts[1], nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

func authenticate(validator TokenValidator, r *http.Request) (Identity, error) {
	token, err := bearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	id, err := validator.ValidateToken(token)
	if err != nil {
		return Identity{}, err
	}
	if id.UserID == uuid.Nil {
		return Identity{}, errNoSubject
	}
	return id, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's Identity in the request context. Rejections are logged at
// debug level without the token.
func AuthMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticate(validator, r)
			if err != nil {
				logger.Debug("authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the Identity stored by AuthMiddleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UserID != uuid.Nil
}

// GetUserID returns the authenticated user ID of r.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}
	return id.UserID, nil
}
