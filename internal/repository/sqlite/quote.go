package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mdewit/quoter/internal/apperror"
	"github.com/mdewit/quoter/internal/model"
	"github.com/mdewit/quoter/internal/repository"
)

// compile-time check that *DB implements repository.QuoteRepository
var _ repository.QuoteRepository = (*DB)(nil)

// ListQuotes returns all quotes in ascending id order.
func (db *DB) ListQuotes(ctx context.Context) ([]model.Quote, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, text, attribution FROM quotes ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing quotes: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		var q model.Quote
		if err := rows.Scan(&q.ID, &q.Text, &q.Attribution); err != nil {
			return nil, fmt.Errorf("sqlite: scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating quotes: %w", err)
	}

	return quotes, nil
}

// GetQuote retrieves a single quote by id.
// Returns apperror.ErrNotFound if no quote exists with that id.
func (db *DB) GetQuote(ctx context.Context, id int64) (*model.Quote, error) {
	var q model.Quote

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, text, attribution FROM quotes WHERE id = ?`,
		id,
	).Scan(&q.ID, &q.Text, &q.Attribution)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("quote", id)
		}
		return nil, fmt.Errorf("sqlite: getting quote %d: %w", id, err)
	}

	return &q, nil
}

// CreateQuote inserts a new quote and returns its id.
//
// The insert runs inside a transaction: either the row is visible to
// subsequent reads or it is not there at all.
func (db *DB) CreateQuote(ctx context.Context, text, attribution string) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO quotes (text, attribution) VALUES (?, ?)`,
		text, attribution,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: inserting quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading quote id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing quote: %w", err)
	}

	return id, nil
}

// ListComments returns all comments for a quote in ascending id order,
// left-joined against users so an anonymous comment (or one whose author row
// is gone) still appears, with a nil UserName.
//
// Timestamps are stored in UTC and converted to server-local time here, on
// the read path, so templates render local time without doing any work.
func (db *DB) ListComments(ctx context.Context, quoteID int64) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.text, c.quote_id, c.user_id, u.name, c.created_at
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.quote_id = ?
		 ORDER BY c.id`,
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for quote %d: %w", quoteID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			c        model.Comment
			userID   sql.NullInt64
			userName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.QuoteID, &userID, &userName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		if userID.Valid {
			c.UserID = &userID.Int64
		}
		if userName.Valid {
			c.UserName = &userName.String
		}
		c.CreatedAt = c.CreatedAt.Local()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// CreateComment inserts a comment on a quote and returns its id. userID may
// be nil for an anonymous comment — it is stored as NULL.
//
// The quote_id foreign key is the backstop here: inserting a comment for a
// quote that does not exist fails at the store level rather than silently
// accepting an orphan row.
func (db *DB) CreateComment(ctx context.Context, text string, quoteID int64, userID *int64) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO comments (text, quote_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		text, quoteID, userID, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: inserting comment on quote %d: %w", quoteID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading comment id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing comment: %w", err)
	}

	return id, nil
}
