package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestFileDB returns a DB backed by a real file in a temp dir. Unlike
// ":memory:" (which is pinned to a single connection), a file database runs
// on the full connection pool, so these tests exercise the per-connection
// configuration the in-memory tests cannot.
func newTestFileDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "quoter.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Pragmas must hold on every connection the pool opens, not just the first
// one. Dropping idle connections forces each query onto a freshly opened
// connection, which only carries the pragmas if they ride on the DSN.
func TestNew_PragmasApplyToEveryConnection(t *testing.T) {
	db := newTestFileDB(t)
	db.conn.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var fk int
		if err := db.conn.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("reading foreign_keys pragma: %v", err)
		}
		if fk != 1 {
			t.Fatalf("connection %d: foreign_keys = %d, want 1", i, fk)
		}

		var timeout int
		if err := db.conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("reading busy_timeout pragma: %v", err)
		}
		if timeout != 3000 {
			t.Fatalf("connection %d: busy_timeout = %d, want 3000", i, timeout)
		}
	}
}

// Same guarantee as TestCreateComment_MissingQuoteFails, but on a file
// database with idle connections dropped, so the foreign key has to be
// enforced by whichever fresh connection the insert lands on.
func TestCreateComment_MissingQuoteFailsOnFileDatabase(t *testing.T) {
	db := newTestFileDB(t)
	db.conn.SetMaxIdleConns(0)

	_, err := db.CreateComment(context.Background(), "orphan", 999, nil)
	if err == nil {
		t.Fatal("CreateComment() should have failed for a nonexistent quote")
	}

	comments, lerr := db.ListComments(context.Background(), 999)
	if lerr != nil {
		t.Fatalf("ListComments() error = %v", lerr)
	}
	if len(comments) != 0 {
		t.Errorf("found %d comments for a quote that does not exist", len(comments))
	}
}
