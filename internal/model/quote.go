// Package model defines the data structures used throughout the application.
package model

import "time"

// Quote is the primary content unit: a quoted passage and who said it.
// Quotes are immutable once posted and are never deleted.
type Quote struct {
	ID          int64
	Text        string
	Attribution string
}

// Comment is a remark attached to exactly one Quote.
//
// UserID is a pointer because anonymous comments are allowed — a nil UserID
// is stored as NULL. UserName is filled in by the repository's LEFT JOIN
// against users; it stays nil for anonymous comments (or if the author row
// ever disappeared), so templates can render "anonymous" instead.
type Comment struct {
	ID        int64
	Text      string
	QuoteID   int64
	UserID    *int64
	UserName  *string
	CreatedAt time.Time
}
