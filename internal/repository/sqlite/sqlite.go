// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
//
// Every query in this package uses parameter binding. Request-derived text is
// never interpolated into SQL, under any circumstance — that property is what
// keeps quote and comment bodies containing quotes/semicolons from ever
// executing as statements.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// sql.DB is already a bounded pool, not a single connection — each request
// checks a connection out per query and returns it when done. Combined with
// WAL mode and a busy timeout, that is all the write serialization this
// application needs; there is no application-level locking anywhere.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/quoter.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	// The pragmas ride on the DSN because sql.DB is a pool: a plain
	// `conn.Exec("PRAGMA ...")` would configure only the one connection it
	// happens to check out, leaving every other connection with foreign
	// keys off and no busy timeout. The _pragma query parameter is applied
	// by the driver to each connection it opens.
	//
	// foreign_keys is OFF by default in SQLite; the comment → quote and
	// comment/session → user references depend on it. busy_timeout makes a
	// writer wait up to 3s for a lock instead of failing with
	// "database is locked".
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(3000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty database,
	// so pin in-memory databases to a single connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight — important for a
	// web server where requests hit the DB concurrently. Unlike the pragmas
	// above it is persistent: once set it is recorded in the database file,
	// so a one-time Exec covers every connection.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// schema is executed idempotently at startup; CREATE TABLE IF NOT EXISTS
// won't error when the tables already exist.
//
// users.name carries the UNIQUE constraint that backs register-on-demand:
// even if two sign-ins race past the lookup, only one row can win.
// comments.user_id is nullable — anonymous comments are a feature, not an
// error state.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS quotes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	text        TEXT NOT NULL,
	attribution TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	quote_id   INTEGER NOT NULL REFERENCES quotes(id),
	user_id    INTEGER REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_comments_quote_id ON comments(quote_id);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
`

// migrate creates all tables. Safe to call multiple times.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
