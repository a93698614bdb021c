package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge/internal/auth"
)

func TestPasswordHasher(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	t.Run("hash verifies against the original password", func(t *testing.T) {
		hash, err := hasher.HashPassword("password123")
		require.NoError(t, err)
		assert.NotEqual(t, "password123", hash)

		assert.NoError(t, hasher.ComparePasswordAndHash("password123", hash))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := hasher.HashPassword("password123")
		require.NoError(t, err)
		second, err := hasher.HashPassword("password123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("mismatch maps to invalid credentials", func(t *testing.T) {
		hash, err := hasher.HashPassword("password123")
		require.NoError(t, err)

		err = hasher.ComparePasswordAndHash("wrong-password", hash)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.HashPassword("")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})

	t.Run("out of range cost falls back to the default", func(t *testing.T) {
		assert.NotNil(t, auth.NewPasswordHasher(99))
		assert.NotNil(t, auth.NewPasswordHasher(-1))
	})
}
