package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mdewit/quoter/internal/apperror"
)

// newTestDB returns a DB backed by a fresh in-memory database that lives
// only for the duration of the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestQuote creates a quote and fails the test if it errors.
func createTestQuote(t *testing.T, db *DB, text, attribution string) int64 {
	t.Helper()
	id, err := db.CreateQuote(context.Background(), text, attribution)
	if err != nil {
		t.Fatalf("failed to create test quote: %v", err)
	}
	return id
}

// =========================================================================
// QUOTE TESTS
// =========================================================================

func TestCreateQuoteAndList(t *testing.T) {
	db := newTestDB(t)

	createTestQuote(t, db, "Hello", "World")

	quotes, err := db.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("ListQuotes() returned %d quotes, want 1", len(quotes))
	}
	if quotes[0].Text != "Hello" || quotes[0].Attribution != "World" {
		t.Errorf("quote = %+v, want text=Hello attribution=World", quotes[0])
	}
}

func TestListQuotes_AscendingIDOrder(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestQuote(t, db, fmt.Sprintf("quote %d", i), "someone")
	}

	quotes, err := db.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(quotes) != 5 {
		t.Fatalf("ListQuotes() returned %d quotes, want 5", len(quotes))
	}
	for i := 1; i < len(quotes); i++ {
		if quotes[i].ID <= quotes[i-1].ID {
			t.Errorf("quotes out of order: id %d after id %d", quotes[i].ID, quotes[i-1].ID)
		}
	}
	// Insertion order, not alphabetical or anything else
	if quotes[0].Text != "quote 0" || quotes[4].Text != "quote 4" {
		t.Errorf("quotes not in insertion order: first=%q last=%q", quotes[0].Text, quotes[4].Text)
	}
}

func TestListQuotes_Empty(t *testing.T) {
	db := newTestDB(t)

	quotes, err := db.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("ListQuotes() on empty db returned %d quotes", len(quotes))
	}
}

func TestGetQuote(t *testing.T) {
	db := newTestDB(t)
	id := createTestQuote(t, db, "some text", "some author")

	quote, err := db.GetQuote(context.Background(), id)
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}
	if quote.ID != id {
		t.Errorf("ID = %d, want %d", quote.ID, id)
	}
	if quote.Text != "some text" {
		t.Errorf("Text = %q, want %q", quote.Text, "some text")
	}
}

func TestGetQuote_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetQuote(context.Background(), 999)
	if err == nil {
		t.Fatal("GetQuote() should have returned an error for a nonexistent id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetQuote() error = %v, want ErrNotFound", err)
	}
}

// The central correctness property: request-derived text with SQL
// metacharacters is bound as a parameter, stored verbatim, and creates
// exactly one row. Nothing in it executes.
func TestCreateQuote_MetacharactersStoredVerbatim(t *testing.T) {
	db := newTestDB(t)

	text := `"); DROP TABLE quotes; --`
	attribution := `Robert'); DELETE FROM users; --`
	createTestQuote(t, db, text, attribution)

	quotes, err := db.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes() error = %v (table should still exist)", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("ListQuotes() returned %d rows, want exactly 1", len(quotes))
	}
	if quotes[0].Text != text {
		t.Errorf("Text = %q, want the literal input %q", quotes[0].Text, text)
	}
	if quotes[0].Attribution != attribution {
		t.Errorf("Attribution = %q, want the literal input %q", quotes[0].Attribution, attribution)
	}
}

func TestCreateQuote_EmptyFieldsAccepted(t *testing.T) {
	db := newTestDB(t)

	// Empty string counts as present — there is no content validation.
	id := createTestQuote(t, db, "", "")

	quote, err := db.GetQuote(context.Background(), id)
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}
	if quote.Text != "" || quote.Attribution != "" {
		t.Errorf("quote = %+v, want empty text and attribution", quote)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestCreateCommentAndList(t *testing.T) {
	db := newTestDB(t)
	quoteID := createTestQuote(t, db, "q", "a")

	userID, err := db.CreateUser(context.Background(), "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if _, err := db.CreateComment(context.Background(), "first", quoteID, &userID); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, err := db.CreateComment(context.Background(), "second", quoteID, nil); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListComments(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("ListComments() returned %d comments, want 2", len(comments))
	}

	// Insertion order
	if comments[0].Text != "first" || comments[1].Text != "second" {
		t.Errorf("comments out of order: %q, %q", comments[0].Text, comments[1].Text)
	}

	// Attributed comment carries the author's name via the LEFT JOIN
	if comments[0].UserName == nil || *comments[0].UserName != "alice" {
		t.Errorf("comments[0].UserName = %v, want alice", comments[0].UserName)
	}
	if comments[0].CreatedAt.IsZero() {
		t.Error("comments[0].CreatedAt is zero")
	}

	// Anonymous comment still appears, with no author
	if comments[1].UserID != nil || comments[1].UserName != nil {
		t.Errorf("anonymous comment has author: userID=%v userName=%v",
			comments[1].UserID, comments[1].UserName)
	}
}

func TestListComments_OnlyForRequestedQuote(t *testing.T) {
	db := newTestDB(t)
	q1 := createTestQuote(t, db, "one", "a")
	q2 := createTestQuote(t, db, "two", "b")

	if _, err := db.CreateComment(context.Background(), "on one", q1, nil); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, err := db.CreateComment(context.Background(), "on two", q2, nil); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListComments(context.Background(), q1)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "on one" {
		t.Errorf("ListComments(q1) = %+v, want just the comment on quote one", comments)
	}
}

func TestCreateComment_MetacharactersStoredVerbatim(t *testing.T) {
	db := newTestDB(t)
	quoteID := createTestQuote(t, db, "q", "a")

	text := `'); DELETE FROM comments; --`
	if _, err := db.CreateComment(context.Background(), text, quoteID, nil); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListComments(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("ListComments() returned %d rows, want exactly 1", len(comments))
	}
	if comments[0].Text != text {
		t.Errorf("Text = %q, want the literal input %q", comments[0].Text, text)
	}
}

// A comment on a quote that does not exist must fail at the store level —
// the foreign key rejects it, no orphan row is silently accepted.
func TestCreateComment_MissingQuoteFails(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateComment(context.Background(), "orphan", 999, nil)
	if err == nil {
		t.Fatal("CreateComment() should have failed for a nonexistent quote")
	}

	// And nothing was written
	comments, lerr := db.ListComments(context.Background(), 999)
	if lerr != nil {
		t.Fatalf("ListComments() error = %v", lerr)
	}
	if len(comments) != 0 {
		t.Errorf("found %d comments for a quote that does not exist", len(comments))
	}
}
