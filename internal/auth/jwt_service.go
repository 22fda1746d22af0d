package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
)

const (
	// DefaultTokenExpiry is the access token lifetime used when none is configured.
	DefaultTokenExpiry = 30 * time.Minute
	// RememberMeExpiry is the extended lifetime selected by the remember-me flag.
	RememberMeExpiry = 30 * 24 * time.Hour
)

// Claims represents the JWT claims carried by an access token. The subject
// is the account email.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService signs and verifies bearer tokens.
type JWTService struct {
	secret         []byte
	defaultExpiry  time.Duration
	rememberExpiry time.Duration
	now            func() time.Time
}

// NewJWTService creates a token service with the given secret and lifetimes.
// Non-positive lifetimes fall back to the package defaults.
func NewJWTService(secret string, defaultExpiry, rememberExpiry time.Duration) *JWTService {
	if defaultExpiry <= 0 {
		defaultExpiry = DefaultTokenExpiry
	}
	if rememberExpiry <= 0 {
		rememberExpiry = RememberMeExpiry
	}
	return &JWTService{
		secret:         []byte(secret),
		defaultExpiry:  defaultExpiry,
		rememberExpiry: rememberExpiry,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Lifetime returns the token lifetime for a login, extended when the
// remember-me flag is set.
func (s *JWTService) Lifetime(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberExpiry
	}
	return s.defaultExpiry
}

// IssueToken signs a token asserting subject until now+lifetime.
func (s *JWTService) IssueToken(subject string, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks signature, structure and expiry. Every failure mode
// collapses into the single ErrInvalidToken so callers cannot tell a
// tampered token from an expired one.
func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
