package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123", h1)
	assert.NotEqual(t, h1, h2, "salts must differ")

	cost, err := bcrypt.Cost([]byte(h1))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashPassword_ByteLimit(t *testing.T) {
	// 24 个汉字正好 72 字节
	_, err := HashPassword(strings.Repeat("密", 24), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = HashPassword(strings.Repeat("密", 30), bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := ComparePasswordAndHash("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasswordAndHash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePasswordAndHash("Secret123", "not-a-bcrypt-hash")
	require.Error(t, err)
}
