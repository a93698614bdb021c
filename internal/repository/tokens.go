package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
)

// RefreshTokens persists hashed refresh tokens. Lookups only ever see
// non-revoked rows; expiry is checked by the caller so it can revoke the
// presented token as a side effect.
type RefreshTokens interface {
	Create(ctx context.Context, record *model.RefreshToken) (*model.RefreshToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.RefreshToken) (*model.RefreshToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokens struct {
	db *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

// NewRefreshTokensRepository builds the bun-backed RefreshTokens store.
func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	return &refreshTokens{db: db}
}

func (r *refreshTokens) Create(ctx context.Context, record *model.RefreshToken) (*model.RefreshToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx bun.IDB, record *model.RefreshToken) (*model.RefreshToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *refreshTokens) GetByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	record := &model.RefreshToken{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.token_hash = ?", tokenHash).
		Where("?TableAlias.revoked = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *refreshTokens) Revoke(ctx context.Context, id uuid.UUID) error {
	return r.RevokeTx(ctx, r.db, id)
}

func (r *refreshTokens) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *refreshTokens) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.RevokeAllForUserTx(ctx, r.db, userID)
}

func (r *refreshTokens) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *refreshTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().Model((*model.RefreshToken)(nil)).
		Where("expires_at < ?", now).
		WhereOr("revoked = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// VerificationTokens persists single-use email verification secrets.
type VerificationTokens interface {
	Create(ctx context.Context, record *model.VerificationToken) (*model.VerificationToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.VerificationToken) (*model.VerificationToken, error)
	GetByToken(ctx context.Context, token string, now time.Time) (*model.VerificationToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type verificationTokens struct {
	db *bun.DB
}

var _ VerificationTokens = (*verificationTokens)(nil)

// NewVerificationTokensRepository builds the bun-backed VerificationTokens store.
func NewVerificationTokensRepository(db *bun.DB) VerificationTokens {
	return &verificationTokens{db: db}
}

func (r *verificationTokens) Create(ctx context.Context, record *model.VerificationToken) (*model.VerificationToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *verificationTokens) CreateTx(ctx context.Context, tx bun.IDB, record *model.VerificationToken) (*model.VerificationToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// GetByToken returns an unconsumed, unexpired token record. Consumed or
// expired tokens are indistinguishable from missing ones.
func (r *verificationTokens) GetByToken(ctx context.Context, token string, now time.Time) (*model.VerificationToken, error) {
	record := &model.VerificationToken{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.used = ?", false).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *verificationTokens) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.MarkUsedTx(ctx, r.db, id)
}

func (r *verificationTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.VerificationToken)(nil)).
		Set("used = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *verificationTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().Model((*model.VerificationToken)(nil)).
		Where("expires_at < ?", now).
		WhereOr("used = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PasswordResets persists hashed single-use password reset secrets. At
// most one active reset token exists per user; issuing a new one
// invalidates the rest.
type PasswordResets interface {
	Create(ctx context.Context, record *model.PasswordResetToken) (*model.PasswordResetToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.PasswordResetToken) (*model.PasswordResetToken, error)
	GetByHash(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error
	InvalidateForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type passwordResets struct {
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

// NewPasswordResetsRepository builds the bun-backed PasswordResets store.
func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	return &passwordResets{db: db}
}

func (r *passwordResets) Create(ctx context.Context, record *model.PasswordResetToken) (*model.PasswordResetToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *passwordResets) CreateTx(ctx context.Context, tx bun.IDB, record *model.PasswordResetToken) (*model.PasswordResetToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *passwordResets) GetByHash(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	record := &model.PasswordResetToken{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.token_hash = ?", tokenHash).
		Where("?TableAlias.used = ?", false).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *passwordResets) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.MarkUsedTx(ctx, r.db, id)
}

func (r *passwordResets) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.PasswordResetToken)(nil)).
		Set("used = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *passwordResets) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	return r.InvalidateForUserTx(ctx, r.db, userID)
}

func (r *passwordResets) InvalidateForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.PasswordResetToken)(nil)).
		Set("used = ?", true).
		Where("user_id = ?", userID).
		Where("used = ?", false).
		Exec(ctx)
	return err
}

func (r *passwordResets) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().Model((*model.PasswordResetToken)(nil)).
		Where("expires_at < ?", now).
		WhereOr("used = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
