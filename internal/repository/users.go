package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
)

// ProfilePatch is the explicit field set a user may change on their own
// profile. Nil fields are left untouched.
type ProfilePatch struct {
	Name         *string
	ProfilePhoto *string
}

// Empty reports whether the patch carries no recognized field.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.ProfilePhoto == nil
}

// Users persists account records
type Users interface {
	Create(ctx context.Context, record *model.User) (*model.User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error)
	TrackLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the bun-backed Users store.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (r *users) Create(ctx context.Context, record *model.User) (*model.User, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, record *model.User) (*model.User, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = model.NormalizeEmail(record.Email)
	if record.Role == "" {
		record.Role = model.RoleUser
	}
	if record.Status == "" {
		record.Status = model.UserStatusPending
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *users) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	record := &model.User{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	record := &model.User{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.email = ?", model.NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *users) List(ctx context.Context) ([]*model.User, error) {
	var records []*model.User
	err := r.db.NewSelect().Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *users) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteTx(ctx, r.db, id)
}

func (r *users) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().Model((*model.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *users) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.MarkVerifiedTx(ctx, r.db, id)
}

func (r *users) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewUpdate().Model((*model.User)(nil)).
		Set("is_verified = ?", true).
		Set("status = ?", model.UserStatusActive).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.UpdatePasswordTx(ctx, r.db, id, passwordHash)
}

func (r *users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := tx.NewUpdate().Model((*model.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *users) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error) {
	q := r.db.NewUpdate().Model((*model.User)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	if patch.Name != nil {
		q.Set("name = ?", *patch.Name)
	}
	if patch.ProfilePhoto != nil {
		q.Set("profile_photo = ?", *patch.ProfilePhoto)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *users) TrackLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.NewUpdate().Model((*model.User)(nil)).
		Set("last_login_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
