package model

import "time"

// User represents a registered account.
//
// Name is stored lower-cased and is UNIQUE in the database — sign-in doubles
// as registration, and the case-folded name is what makes "Alice" and "alice"
// the same account.
//
// PasswordHash is a bcrypt hash (never the plaintext password). It is
// self-contained: the salt and cost are embedded in the hash string.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a server-held login session. The client only ever holds a signed
// token whose subject is the session ID — it cannot mint or alter one.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
