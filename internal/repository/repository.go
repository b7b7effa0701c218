// Package repository defines the storage interfaces the rest of the
// application depends on. Implementations live in subpackages (sqlite).
package repository

import (
	"context"
	"time"

	"github.com/mdewit/quoter/internal/model"
)

// QuoteRepository covers quotes and the comments attached to them.
//
// Listings are always returned in ascending id (insertion) order — the
// templates rely on this, and the contract is part of the store, not the
// caller.
type QuoteRepository interface {
	ListQuotes(ctx context.Context) ([]model.Quote, error)
	GetQuote(ctx context.Context, id int64) (*model.Quote, error)
	CreateQuote(ctx context.Context, text, attribution string) (int64, error)
	ListComments(ctx context.Context, quoteID int64) ([]model.Comment, error)
	CreateComment(ctx context.Context, text string, quoteID int64, userID *int64) (int64, error)
}

// UserRepository looks up and creates accounts. Names are expected to be
// lower-cased by the caller before they reach this layer.
type UserRepository interface {
	FindUserByName(ctx context.Context, name string) (*model.User, error)
	CreateUser(ctx context.Context, name, passwordHash string) (int64, error)
}

// SessionRepository manages server-held login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID int64, lifetime time.Duration) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}
