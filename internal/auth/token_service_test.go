package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/model"
)

var (
	testSigningKey = []byte("test-signing-key")
	testIssuer     = "test-issuer"
	testAudience   = jwt.ClaimStrings{"test-audience"}
)

func newTokenService(opts ...auth.TokenServiceOption) auth.TokenService {
	return auth.NewTokenService(testSigningKey, testIssuer, testAudience, nil, opts...)
}

func testUser() *model.User {
	return &model.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  model.RoleUser,
	}
}

func TestTokenService_GenerateAccessToken(t *testing.T) {
	service := newTokenService()

	t.Run("generates a verifiable JWT", func(t *testing.T) {
		user := testUser()

		tokenString, err := service.GenerateAccessToken(auth.NewIdentity(user))
		require.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		claims, err := service.VerifyAccessToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, user.Email, claims.Email())
		assert.Equal(t, model.RoleUser, claims.Role())
	})

	t.Run("rejects nil identity", func(t *testing.T) {
		_, err := service.GenerateAccessToken(nil)
		assert.Error(t, err)
	})
}

func TestTokenService_VerifyAccessToken(t *testing.T) {
	service := newTokenService()

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.VerifyAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other-key"), testIssuer, testAudience, nil)
		tokenString, err := other.GenerateAccessToken(auth.NewIdentity(testUser()))
		require.NoError(t, err)

		_, err = service.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
	})

	t.Run("rejects token from a different issuer", func(t *testing.T) {
		other := auth.NewTokenService(testSigningKey, "other-issuer", testAudience, nil)
		tokenString, err := other.GenerateAccessToken(auth.NewIdentity(testUser()))
		require.NoError(t, err)

		_, err = service.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		stale := newTokenService(auth.WithClock(func() time.Time { return past }))

		tokenString, err := stale.GenerateAccessToken(auth.NewIdentity(testUser()))
		require.NoError(t, err)

		_, err = service.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
	})
}

func TestTokenService_OpaqueTokens(t *testing.T) {
	service := newTokenService()

	t.Run("refresh tokens carry 512 bits of entropy", func(t *testing.T) {
		token, err := service.GenerateRefreshToken()
		require.NoError(t, err)
		assert.Len(t, token, 128)

		other, err := service.GenerateRefreshToken()
		require.NoError(t, err)
		assert.NotEqual(t, token, other)
	})

	t.Run("verification tokens carry 256 bits of entropy", func(t *testing.T) {
		token, err := service.GenerateVerificationToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("hashing is deterministic and one-way", func(t *testing.T) {
		hash := service.HashToken("secret-token")
		assert.Len(t, hash, 64)
		assert.Equal(t, hash, service.HashToken("secret-token"))
		assert.NotEqual(t, hash, service.HashToken("secret-token2"))
		assert.NotEqual(t, "secret-token", hash)
	})
}

func TestTokenService_Expiries(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	clock := auth.WithClock(func() time.Time { return now })

	t.Run("defaults", func(t *testing.T) {
		service := newTokenService(clock)

		assert.Equal(t, auth.DefaultAccessTokenTTL, service.AccessTokenTTL())
		assert.Equal(t, now.AddDate(0, 0, auth.DefaultRefreshTokenDays), service.RefreshTokenExpiry())
		assert.Equal(t, now.Add(24*time.Hour), service.VerificationTokenExpiry())
		assert.Equal(t, now.Add(time.Hour), service.PasswordResetTokenExpiry())
	})

	t.Run("overrides", func(t *testing.T) {
		service := newTokenService(clock,
			auth.WithAccessTokenTTL(5*time.Minute),
			auth.WithRefreshTokenDays(30),
		)

		assert.Equal(t, 5*time.Minute, service.AccessTokenTTL())
		assert.Equal(t, now.AddDate(0, 0, 30), service.RefreshTokenExpiry())
	})
}
