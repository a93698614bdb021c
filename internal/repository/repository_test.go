package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

func newTestManager(t *testing.T) repository.Manager {
	t.Helper()

	db, err := repository.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.CreateSchema(context.Background(), db))

	return repository.NewManager(db)
}

func seedUser(t *testing.T, repo repository.Manager, email string) *model.User {
	t.Helper()
	user, err := repo.Users().Create(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Seed User",
	})
	require.NoError(t, err)
	return user
}

func strptr(s string) *string { return &s }

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("create normalizes email and applies defaults", func(t *testing.T) {
		repo := newTestManager(t)

		user, err := repo.Users().Create(ctx, &model.User{
			Email:        "  Mixed.Case@Example.COM ",
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		assert.Equal(t, "mixed.case@example.com", user.Email)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.Equal(t, model.UserStatusPending, user.Status)
		assert.False(t, user.IsVerified)
	})

	t.Run("lookup by email is case-insensitive", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		found, err := repo.Users().GetByEmail(ctx, "USER@Example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = repo.Users().GetByEmail(ctx, "other@example.com")
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("mark verified activates the account", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		require.NoError(t, repo.Users().MarkVerified(ctx, user.ID))

		stored, err := repo.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsVerified)
		assert.Equal(t, model.UserStatusActive, stored.Status)

		err = repo.Users().MarkVerified(ctx, uuid.New())
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("list returns every account", func(t *testing.T) {
		repo := newTestManager(t)
		seedUser(t, repo, "first@example.com")
		seedUser(t, repo, "second@example.com")

		records, err := repo.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("delete hides the account from every lookup", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		require.NoError(t, repo.Users().Delete(ctx, user.ID))

		_, err := repo.Users().GetByID(ctx, user.ID)
		assert.True(t, repository.IsRecordNotFound(err))
		_, err = repo.Users().GetByEmail(ctx, user.Email)
		assert.True(t, repository.IsRecordNotFound(err))

		records, err := repo.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)

		err = repo.Users().Delete(ctx, user.ID)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("profile patch only touches provided fields", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		updated, err := repo.Users().UpdateProfile(ctx, user.ID, repository.ProfilePatch{
			Name: strptr("Renamed"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, user.Email, updated.Email)

		_, err = repo.Users().UpdateProfile(ctx, uuid.New(), repository.ProfilePatch{Name: strptr("x")})
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestManagerValidate(t *testing.T) {
	repo := newTestManager(t)

	require.NoError(t, repo.Validate())
	assert.NotPanics(t, repo.MustValidate)
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	seedUser(t, repo, "user@example.com")

	_, err := repo.Users().Create(ctx, &model.User{
		Email:        "user@example.com",
		PasswordHash: "hash",
	})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	assert.False(t, repository.IsUniqueViolation(nil))
	assert.False(t, repository.IsUniqueViolation(sql.ErrNoRows))
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup never returns revoked rows", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		record, err := repo.RefreshTokens().Create(ctx, &model.RefreshToken{
			UserID:    user.ID,
			TokenHash: "hash-1",
			ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		found, err := repo.RefreshTokens().GetByHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)

		require.NoError(t, repo.RefreshTokens().Revoke(ctx, record.ID))

		_, err = repo.RefreshTokens().GetByHash(ctx, "hash-1")
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("revoke all is scoped to one user", func(t *testing.T) {
		repo := newTestManager(t)
		first := seedUser(t, repo, "first@example.com")
		second := seedUser(t, repo, "second@example.com")

		expires := time.Now().Add(time.Hour)
		_, err := repo.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: first.ID, TokenHash: "hash-a", ExpiresAt: expires})
		require.NoError(t, err)
		_, err = repo.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: second.ID, TokenHash: "hash-b", ExpiresAt: expires})
		require.NoError(t, err)

		require.NoError(t, repo.RefreshTokens().RevokeAllForUser(ctx, first.ID))

		_, err = repo.RefreshTokens().GetByHash(ctx, "hash-a")
		assert.True(t, repository.IsRecordNotFound(err))
		_, err = repo.RefreshTokens().GetByHash(ctx, "hash-b")
		assert.NoError(t, err)
	})

	t.Run("delete expired removes stale and revoked rows", func(t *testing.T) {
		repo := newTestManager(t)
		user := seedUser(t, repo, "user@example.com")

		_, err := repo.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: user.ID, TokenHash: "stale", ExpiresAt: time.Now().Add(-time.Hour)})
		require.NoError(t, err)
		revoked, err := repo.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: user.ID, TokenHash: "revoked", ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		require.NoError(t, repo.RefreshTokens().Revoke(ctx, revoked.ID))
		_, err = repo.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: user.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)

		n, err := repo.RefreshTokens().DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = repo.RefreshTokens().GetByHash(ctx, "live")
		assert.NoError(t, err)
	})
}

func TestPasswordResets(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)
	user := seedUser(t, repo, "user@example.com")

	expires := time.Now().Add(time.Hour)
	first, err := repo.PasswordResets().Create(ctx, &model.PasswordResetToken{UserID: user.ID, TokenHash: "reset-1", ExpiresAt: expires})
	require.NoError(t, err)
	_, err = repo.PasswordResets().Create(ctx, &model.PasswordResetToken{UserID: user.ID, TokenHash: "reset-2", ExpiresAt: expires})
	require.NoError(t, err)

	t.Run("lookup skips used and expired rows", func(t *testing.T) {
		found, err := repo.PasswordResets().GetByHash(ctx, "reset-1", time.Now())
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		_, err = repo.PasswordResets().GetByHash(ctx, "reset-1", time.Now().Add(2*time.Hour))
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("invalidate consumes every active token for the user", func(t *testing.T) {
		require.NoError(t, repo.PasswordResets().InvalidateForUser(ctx, user.ID))

		_, err := repo.PasswordResets().GetByHash(ctx, "reset-1", time.Now())
		assert.True(t, repository.IsRecordNotFound(err))
		_, err = repo.PasswordResets().GetByHash(ctx, "reset-2", time.Now())
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestTasksClearDueDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)

	due := time.Now().Add(24 * time.Hour)
	record, err := repo.Tasks().Create(ctx, &model.Task{Title: "with due date", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, record.DueDate)

	err = repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return repo.Tasks().UpdateTx(ctx, tx, record.ID, repository.TaskPatch{ClearDue: true})
	})
	require.NoError(t, err)

	stored, err := repo.Tasks().GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DueDate)
}

func TestTeamsScopedToOrganization(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)

	org, err := repo.Organizations().Create(ctx, &model.Organization{Name: "Acme"})
	require.NoError(t, err)
	other, err := repo.Organizations().Create(ctx, &model.Organization{Name: "Globex"})
	require.NoError(t, err)

	_, err = repo.Teams().Create(ctx, &model.Team{OrganizationID: org.ID, Name: "Platform"})
	require.NoError(t, err)
	_, err = repo.Teams().Create(ctx, &model.Team{OrganizationID: other.ID, Name: "Sales"})
	require.NoError(t, err)

	records, err := repo.Teams().ListByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Platform", records[0].Name)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newTestManager(t)

	err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := repo.Tasks().CreateTx(ctx, tx, &model.Task{Title: "doomed"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	records, err := repo.Tasks().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
