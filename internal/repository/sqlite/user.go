package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mdewit/quoter/internal/apperror"
	"github.com/mdewit/quoter/internal/model"
	"github.com/mdewit/quoter/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// FindUserByName retrieves a user by their (already lower-cased) name.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, password_hash, created_at FROM users WHERE name = ?`,
		name,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", name)
		}
		return nil, fmt.Errorf("sqlite: finding user %q: %w", name, err)
	}

	return &u, nil
}

// CreateUser inserts a new user row and returns its id.
//
// The UNIQUE constraint on name is the last line of defense against two
// concurrent register-on-demand sign-ins creating the same account twice;
// a constraint hit maps to apperror.ErrConflict so the sign-in flow can
// fall back to the row that won.
func (db *DB) CreateUser(ctx context.Context, name, passwordHash string) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, created_at) VALUES (?, ?, ?)`,
		name, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueErr(err, "users.name") {
			return 0, apperror.Conflict("user", name)
		}
		return 0, fmt.Errorf("sqlite: inserting user %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading user id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing user: %w", err)
	}

	return id, nil
}

// isUniqueErr reports whether err is a SQLite UNIQUE constraint violation on
// the given column. SQLite reports these as
// "UNIQUE constraint failed: table.column" in the error text.
func isUniqueErr(err error, col string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") &&
		strings.Contains(msg, strings.ToLower(col))
}
