package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager exposes all repositories plus the transaction boundary. It is
// passed explicitly to every component that needs persistence; nothing
// imports a store as ambient state.
type Manager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()

	Users() Users
	RefreshTokens() RefreshTokens
	VerificationTokens() VerificationTokens
	PasswordResets() PasswordResets
	Tasks() Tasks
	Projects() Projects
	Organizations() Organizations
	Teams() Teams
}

type mngr struct {
	db                 *bun.DB
	users              Users
	refreshTokens      RefreshTokens
	verificationTokens VerificationTokens
	passwordResets     PasswordResets
	tasks              Tasks
	projects           Projects
	organizations      Organizations
	teams              Teams
}

// NewManager wires every repository against the given database handle.
func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:                 db,
		users:              NewUsersRepository(db),
		refreshTokens:      NewRefreshTokensRepository(db),
		verificationTokens: NewVerificationTokensRepository(db),
		passwordResets:     NewPasswordResetsRepository(db),
		tasks:              NewTasksRepository(db),
		projects:           NewProjectsRepository(db),
		organizations:      NewOrganizationsRepository(db),
		teams:              NewTeamsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}
	if m.refreshTokens == nil {
		return errors.New("repository refreshTokens should be initialized")
	}
	if m.verificationTokens == nil {
		return errors.New("repository verificationTokens should be initialized")
	}
	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}
	if m.tasks == nil {
		return errors.New("repository tasks should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users                           { return m.users }
func (m mngr) RefreshTokens() RefreshTokens           { return m.refreshTokens }
func (m mngr) VerificationTokens() VerificationTokens { return m.verificationTokens }
func (m mngr) PasswordResets() PasswordResets         { return m.passwordResets }
func (m mngr) Tasks() Tasks                           { return m.tasks }
func (m mngr) Projects() Projects                     { return m.projects }
func (m mngr) Organizations() Organizations           { return m.organizations }
func (m mngr) Teams() Teams                           { return m.teams }
