package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret", 30*time.Minute, 30*24*time.Hour)
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(time.Now().UTC()))
}

func TestJWTService_TokensAreNotIdempotent(t *testing.T) {
	svc := newTestJWTService()

	first, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(time.Second) }
	second, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }

	token, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	raw := []byte(token)
	pos := len(raw) / 2
	if raw[pos] == 'A' {
		raw[pos] = 'B'
	} else {
		raw[pos] = 'A'
	}

	claims, err := svc.VerifyToken(string(raw))
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("other-secret", 30*time.Minute, 30*24*time.Hour)

	token, err := svc.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := other.VerifyToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_MissingSubject(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.IssueToken("", time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_MalformedToken(t *testing.T) {
	svc := newTestJWTService()

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		claims, err := svc.VerifyToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	}
}

func TestJWTService_Lifetime(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)

	assert.Equal(t, 15*time.Minute, svc.Lifetime(false))
	assert.Equal(t, 7*24*time.Hour, svc.Lifetime(true))
}

func TestNewJWTService_DefaultLifetimes(t *testing.T) {
	svc := NewJWTService("test-secret", 0, 0)

	assert.Equal(t, DefaultTokenExpiry, svc.Lifetime(false))
	assert.Equal(t, RememberMeExpiry, svc.Lifetime(true))
}
