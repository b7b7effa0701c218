// Package service contains the business logic, between the HTTP handlers and
// the repositories:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt) / TokenService (signed cookie)
//
// Services know nothing about HTTP — no cookies, no redirects, no status
// codes. That keeps the sign-in rules testable with plain fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mdewit/quoter/internal/apperror"
	"github.com/mdewit/quoter/internal/auth"
	"github.com/mdewit/quoter/internal/repository"
)

// AuthService handles sign-in, register-on-demand, and sign-out.
type AuthService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	lifetime  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// lifetime is how long issued sessions (and their cookie tokens) stay valid.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	lifetime time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		passwords: passwords,
		lifetime:  lifetime,
		logger:    logger,
	}
}

// SignInResult is returned by SignIn. It bundles the user id and the signed
// session token so the handler can set the cookie and redirect in one step.
type SignInResult struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// SignIn authenticates a user, registering them on demand.
//
// The username is lower-cased before both the lookup and any insert, so
// "Alice" and "alice" always resolve to the same account.
//
// Outcomes:
//   - known name, credential verifies → session for the existing user
//   - known name, credential fails    → apperror.ErrUnauthorized, nothing written
//   - unknown name                    → new user row (bcrypt hash), then a session
//
// There is no separate registration action; a mistyped username silently
// becomes a new account. That is the product's chosen behavior, not a bug.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	name := strings.ToLower(username)
	if name == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.FindUserByName(ctx, name)
	switch {
	case err == nil:
		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			if errors.Is(err, auth.ErrInvalidCredential) {
				return nil, apperror.Unauthorized("Invalid password!")
			}
			return nil, fmt.Errorf("service/auth: verifying credential for %q: %w", name, err)
		}
		return s.startSession(ctx, user.ID)

	case errors.Is(err, apperror.ErrNotFound):
		return s.register(ctx, name, password)

	default:
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", name, err)
	}
}

// register creates the account and opens a session for it.
//
// If two sign-ins race past the lookup with the same new name, the UNIQUE
// constraint lets exactly one insert win; the loser re-reads the winning row
// and proceeds as a normal sign-in against it.
func (s *AuthService) register(ctx context.Context, name, password string) (*SignInResult, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password for %q: %w", name, err)
	}

	userID, err := s.users.CreateUser(ctx, name, hash)
	if err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("service/auth: registering user %q: %w", name, err)
		}
		existing, lookupErr := s.users.FindUserByName(ctx, name)
		if lookupErr != nil {
			return nil, fmt.Errorf("service/auth: re-reading user %q after conflict: %w", name, lookupErr)
		}
		if verr := s.passwords.Verify(existing.PasswordHash, password); verr != nil {
			return nil, apperror.Unauthorized("Invalid password!")
		}
		userID = existing.ID
	} else {
		s.logger.Info("registered new user", slog.Int64("userID", userID), slog.String("name", name))
	}

	return s.startSession(ctx, userID)
}

func (s *AuthService) startSession(ctx context.Context, userID int64) (*SignInResult, error) {
	session, err := s.sessions.CreateSession(ctx, userID, s.lifetime)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session for user %d: %w", userID, err)
	}

	token, err := s.tokens.Generate(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing session token for user %d: %w", userID, err)
	}

	s.logger.Info("user signed in", slog.Int64("userID", userID), slog.String("sessionID", session.ID))

	return &SignInResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// SignOut invalidates the session named by the cookie token server-side.
// An unparseable token or an already-gone session is not an error — the
// outcome the caller wants (no usable session) already holds.
func (s *AuthService) SignOut(ctx context.Context, tokenStr string) error {
	sessionID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return nil
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("service/auth: deleting session %s: %w", sessionID, err)
	}

	s.logger.Info("user signed out", slog.String("sessionID", sessionID))
	return nil
}
