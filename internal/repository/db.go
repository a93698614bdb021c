package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx database/sql driver
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/taskforge/taskforge/internal/model"
)

// Connect opens a bun.DB for the given DSN. Postgres DSNs use pgx,
// anything else is treated as a SQLite path (":memory:" included).
func Connect(dsn string) (*bun.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writes; a single connection avoids table locks
	// under concurrent request handling.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Models lists every persisted entity in creation order.
func Models() []any {
	return []any{
		(*model.User)(nil),
		(*model.RefreshToken)(nil),
		(*model.VerificationToken)(nil),
		(*model.PasswordResetToken)(nil),
		(*model.Task)(nil),
		(*model.Subtask)(nil),
		(*model.Project)(nil),
		(*model.Organization)(nil),
		(*model.Team)(nil),
	}
}

// CreateSchema creates all tables if missing. Development and test
// convenience; production schemas are managed externally.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, m := range Models() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// IsRecordNotFound reports whether err is a missing-row error.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// on either backend. Postgres exposes SQLSTATE 23505; the sqlite drivers
// only surface the constraint in the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireAffected converts a zero-row update into a missing-row error so
// callers can translate it with IsRecordNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
