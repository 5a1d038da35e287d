package crypto_test

import (
	"testing"

	"github.com/energy-data-api/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := crypto.HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, crypto.CheckPassword("pw1", hash))
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	hash, err := crypto.HashPassword("pw1")
	require.NoError(t, err)
	assert.False(t, crypto.CheckPassword("pw2", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := crypto.HashPassword("pw1")
	require.NoError(t, err)
	second, err := crypto.HashPassword("pw1")
	require.NoError(t, err)

	// Each call embeds a fresh salt, yet both digests verify
	assert.NotEqual(t, first, second)
	assert.True(t, crypto.CheckPassword("pw1", first))
	assert.True(t, crypto.CheckPassword("pw1", second))
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	assert.False(t, crypto.CheckPassword("pw1", ""))
	assert.False(t, crypto.CheckPassword("pw1", "not-a-bcrypt-digest"))
}
