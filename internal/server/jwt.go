package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/config"
	"github.com/jonathan/flower-resume/internal/server/middleware"
	"github.com/jonathan/flower-resume/internal/types"
)

const (
	tokenIssuer   = "flower-resume"
	tokenAudience = "flower-resume-api"
	clockSkew     = 30 * time.Second
)

// Claims is the session token payload. The subject is the user ID; the email
// lets clients show who is signed in without a round trip to /api/auth/me.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}

// JWTService issues and verifies HS256 session tokens.
type JWTService struct {
	config *config.JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

var _ middleware.TokenValidator = (*JWTService)(nil)

// NewJWTService creates a JWTService signing with cfg.Secret.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithAudience(tokenAudience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		now: time.Now,
	}
}

// GenerateToken issues a token for user that expires after the configured
// number of hours.
func (s *JWTService) GenerateToken(user *types.User) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", errors.New("cannot issue a token without a user")
	}
	now := s.now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature, issuer, audience and validity window of
// token and returns its claims.
func (s *JWTService) ParseToken(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("token is empty")
	}
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("token expired: %w", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, fmt.Errorf("invalid token signature: %w", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("malformed token: %w", err)
	default:
		return nil, fmt.Errorf("invalid token: %w", err)
	}
}

// ValidateToken implements middleware.TokenValidator.
func (s *JWTService) ValidateToken(token string) (middleware.Identity, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return middleware.Identity{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return middleware.Identity{}, err
	}
	return middleware.Identity{UserID: userID, Email: claims.Email}, nil
}
