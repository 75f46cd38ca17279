package auth_test

import (
	"testing"

	"disaster-backend/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("p")
	require.NoError(t, err)

	assert.NotEqual(t, "p", hash)
	assert.True(t, auth.CheckPassword(hash, "p"))
	assert.False(t, auth.CheckPassword(hash, "P"))
	assert.False(t, auth.CheckPassword("not-a-hash", "p"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := auth.HashPassword("same")
	require.NoError(t, err)
	b, err := auth.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
