package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "Secret123")

	assert.True(t, hasher.Verify("Secret123", digest))
	assert.False(t, hasher.Verify("Secret124", digest))
	assert.False(t, hasher.Verify("", digest))
}

func TestPasswordHasher_DistinctDigestsPerHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("Secret123")
	require.NoError(t, err)

	// Salted: same password never produces the same digest twice.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("Secret123", first))
	assert.True(t, hasher.Verify("Secret123", second))
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("Secret123", ""))
	assert.False(t, hasher.Verify("Secret123", "not-a-bcrypt-digest"))
	assert.False(t, hasher.Verify("Secret123", "$2a$xx$garbage"))
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"zero falls back to default", 0, DefaultBcryptCost},
		{"negative falls back to default", -3, DefaultBcryptCost},
		{"above max falls back to default", bcrypt.MaxCost + 1, DefaultBcryptCost},
		{"min cost kept", bcrypt.MinCost, bcrypt.MinCost},
		{"custom cost kept", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPasswordHasher(tt.cost).Cost())
		})
	}
}
