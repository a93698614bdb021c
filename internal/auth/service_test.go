package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

// captureSender hands delivered tokens to the test through channels,
// since the service dispatches mail on its own goroutine.
type captureSender struct {
	verification chan string
	reset        chan string
}

func newCaptureSender() *captureSender {
	return &captureSender{
		verification: make(chan string, 8),
		reset:        make(chan string, 8),
	}
}

func (s *captureSender) SendVerificationEmail(_ context.Context, _, token string) error {
	s.verification <- token
	return nil
}

func (s *captureSender) SendPasswordResetEmail(_ context.Context, _, token string) error {
	s.reset <- token
	return nil
}

func waitToken(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case token := <-ch:
		return token
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mail dispatch")
		return ""
	}
}

type authFixture struct {
	svc  *auth.Service
	repo repository.Manager
	mail *captureSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, err := repository.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.CreateSchema(context.Background(), db))

	repo := repository.NewManager(db)
	tokens := auth.NewTokenService(testSigningKey, testIssuer, testAudience, nil)
	mail := newCaptureSender()
	svc := auth.NewService(repo, tokens, auth.NewPasswordHasher(bcrypt.MinCost), mail)

	return &authFixture{svc: svc, repo: repo, mail: mail}
}

func (f *authFixture) register(t *testing.T, email, password string) *model.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), email, password, "Test User")
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unverified account", func(t *testing.T) {
		f := newAuthFixture(t)

		user := f.register(t, "New.User@Example.COM", "password123")

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "new.user@example.com", user.Email)
		assert.False(t, user.IsVerified)
		assert.Equal(t, model.UserStatusPending, user.Status)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "password123", user.PasswordHash)

		stored, err := f.repo.Users().GetByEmail(ctx, "new.user@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("persists the dispatched verification token", func(t *testing.T) {
		f := newAuthFixture(t)

		user := f.register(t, "user@example.com", "password123")
		token := waitToken(t, f.mail.verification)

		record, err := f.repo.VerificationTokens().GetByToken(ctx, token, time.Now())
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)
	})

	t.Run("rejects duplicate email regardless of case", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		_, err := f.svc.Register(ctx, "USER@example.com", "otherpassword", "Other")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(ctx, "user@example.com", "", "Test")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})

	t.Run("losing a concurrent registration still reports email exists", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		// hide the existing account from the pre-insert check so the
		// insert has to lose to the unique email constraint
		svc := auth.NewService(
			blindCheckManager{Manager: f.repo},
			auth.NewTokenService(testSigningKey, testIssuer, testAudience, nil),
			auth.NewPasswordHasher(bcrypt.MinCost),
			f.mail,
		)

		_, err := svc.Register(ctx, "user@example.com", "otherpassword", "Late")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})
}

// blindCheckManager reports every email as unused, so registration
// always reaches the insert.
type blindCheckManager struct {
	repository.Manager
}

func (m blindCheckManager) Users() repository.Users {
	return blindCheckUsers{m.Manager.Users()}
}

type blindCheckUsers struct {
	repository.Users
}

func (blindCheckUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, sql.ErrNoRows
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the account verified and active", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")
		token := waitToken(t, f.mail.verification)

		require.NoError(t, f.svc.VerifyEmail(ctx, token))

		stored, err := f.repo.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsVerified)
		assert.Equal(t, model.UserStatusActive, stored.Status)
	})

	t.Run("replaying a consumed token fails like an unknown one", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")
		token := waitToken(t, f.mail.verification)

		require.NoError(t, f.svc.VerifyEmail(ctx, token))

		err := f.svc.VerifyEmail(ctx, token)
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)

		err = f.svc.VerifyEmail(ctx, "no-such-token")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a working token pair", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")

		loggedIn, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, int64(auth.DefaultAccessTokenTTL.Seconds()), pair.ExpiresIn)

		claims, err := f.svc.TokenService().VerifyAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())

		// only the hash of the refresh token is persisted
		hash := f.svc.TokenService().HashToken(pair.RefreshToken)
		stored, err := f.repo.RefreshTokens().GetByHash(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
	})

	t.Run("records the login time", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")

		_, _, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		stored, err := f.repo.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		_, _, errUnknown := f.svc.Login(ctx, "nobody@example.com", "password123")
		_, _, errWrong := f.svc.Login(ctx, "user@example.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, auth.ErrInvalidCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token on use", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")

		_, first, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		refreshed, second, err := f.svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, refreshed.ID)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

		// the consumed token is dead, the new one works
		_, _, err = f.svc.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

		_, _, err = f.svc.Refresh(ctx, second.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.svc.Refresh(ctx, "no-such-token")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("revokes an expired token on presentation", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")

		hash := f.svc.TokenService().HashToken("expired-token")
		_, err := f.repo.RefreshTokens().Create(ctx, &model.RefreshToken{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(-time.Hour),
		})
		require.NoError(t, err)

		_, _, err = f.svc.Refresh(ctx, "expired-token")
		assert.ErrorIs(t, err, auth.ErrRefreshTokenExpired)

		_, err = f.repo.RefreshTokens().GetByHash(ctx, hash)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the presented session", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))

		_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("missing token revokes nothing", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, ""))

		_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("unknown token is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.NoError(t, f.svc.Logout(ctx, "no-such-token"))
	})

	t.Run("logout all revokes every session", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")

		_, first, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		_, second, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, f.svc.LogoutAll(ctx, user.ID))

		_, _, err = f.svc.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
		_, _, err = f.svc.Refresh(ctx, second.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email succeeds without leaking existence", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	})

	t.Run("reset changes the password and revokes every session", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, f.svc.ForgotPassword(ctx, "user@example.com"))
		token := waitToken(t, f.mail.reset)

		require.NoError(t, f.svc.ResetPassword(ctx, token, "newpassword456"))

		_, _, err = f.svc.Login(ctx, "user@example.com", "password123")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, _, err = f.svc.Login(ctx, "user@example.com", "newpassword456")
		assert.NoError(t, err)

		_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("reset tokens are single use", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		require.NoError(t, f.svc.ForgotPassword(ctx, "user@example.com"))
		token := waitToken(t, f.mail.reset)

		require.NoError(t, f.svc.ResetPassword(ctx, token, "newpassword456"))

		err := f.svc.ResetPassword(ctx, token, "thirdpassword789")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("a new request invalidates the previous token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "user@example.com", "password123")

		require.NoError(t, f.svc.ForgotPassword(ctx, "user@example.com"))
		first := waitToken(t, f.mail.reset)
		require.NoError(t, f.svc.ForgotPassword(ctx, "user@example.com"))
		second := waitToken(t, f.mail.reset)

		err := f.svc.ResetPassword(ctx, first, "newpassword456")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

		assert.NoError(t, f.svc.ResetPassword(ctx, second, "newpassword456"))
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		f := newAuthFixture(t)

		err := f.svc.ResetPassword(ctx, "no-such-token", "newpassword456")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})
}

func TestService_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a fresh usable token", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")
		waitToken(t, f.mail.verification)

		require.NoError(t, f.svc.ResendVerification(ctx, user.ID))
		token := waitToken(t, f.mail.verification)

		require.NoError(t, f.svc.VerifyEmail(ctx, token))

		stored, err := f.repo.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsVerified)
	})

	t.Run("rejects already verified accounts", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.register(t, "user@example.com", "password123")
		token := waitToken(t, f.mail.verification)
		require.NoError(t, f.svc.VerifyEmail(ctx, token))

		err := f.svc.ResendVerification(ctx, user.ID)
		assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
	})

	t.Run("rejects unknown users", func(t *testing.T) {
		f := newAuthFixture(t)

		err := f.svc.ResendVerification(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}

func TestService_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	user := f.register(t, "user@example.com", "password123")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	_, err := f.repo.RefreshTokens().Create(ctx, &model.RefreshToken{
		UserID: user.ID, TokenHash: "stale-refresh", ExpiresAt: past,
	})
	require.NoError(t, err)
	_, err = f.repo.VerificationTokens().Create(ctx, &model.VerificationToken{
		UserID: user.ID, Token: "stale-verification", ExpiresAt: past,
	})
	require.NoError(t, err)
	_, err = f.repo.PasswordResets().Create(ctx, &model.PasswordResetToken{
		UserID: user.ID, TokenHash: "stale-reset", ExpiresAt: past,
	})
	require.NoError(t, err)
	_, err = f.repo.RefreshTokens().Create(ctx, &model.RefreshToken{
		UserID: user.ID, TokenHash: "live-refresh", ExpiresAt: future,
	})
	require.NoError(t, err)

	// registration left one live verification token behind
	n, err := f.svc.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	live, err := f.repo.RefreshTokens().GetByHash(ctx, "live-refresh")
	require.NoError(t, err)
	assert.Equal(t, user.ID, live.UserID)
}
