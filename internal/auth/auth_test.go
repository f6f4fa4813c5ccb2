package auth

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscope/internal/config"
)

func testService() *Service {
	cfg := config.DefaultConfig()
	// MinCost keeps the test fast; production uses the configured cost.
	cfg.Auth.BcryptCost = 4
	return &Service{cfg: &cfg.Auth}
}

func TestHashAndCheckPassword(t *testing.T) {
	s := testService()

	hash, err := s.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse battery"))
}

func TestHashPasswordTooShort(t *testing.T) {
	s := testService()

	_, err := s.HashPassword("curta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestSelfDemotionRejected(t *testing.T) {
	svc := testService()
	err := svc.SetAdmin(context.Background(), "u-1", "u-1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot revoke your own admin access")
}

func TestSelfDeletionRejected(t *testing.T) {
	svc := testService()
	err := svc.DeleteUser(context.Background(), "u-1", "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete your own account")
}

func TestSessionTokensAreUniqueUUIDs(t *testing.T) {
	first := newSessionToken()
	second := newSessionToken()
	assert.NotEqual(t, first, second)

	parsed, err := uuid.FromString(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.V4, parsed.Version())
}

func TestHashesAreSalted(t *testing.T) {
	s := testService()

	first, err := s.HashPassword("mesma senha forte")
	require.NoError(t, err)
	second, err := s.HashPassword("mesma senha forte")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
