package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/mdewit/quoter/internal/repository"
)

// CookieName is the identity cookie. Its value is a signed session token,
// never a raw user or session id.
const CookieName = "quoter_session"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the resolved identity.
type contextKey string

const userIDKey contextKey = "userID"

// Identity resolves the acting user for every request, before any handler
// runs. It never blocks a request: absent cookie, bad signature, unknown or
// expired session all just mean the request proceeds as anonymous.
//
// Resolution order:
//  1. read the identity cookie (absent → anonymous)
//  2. verify the token signature and expiry (invalid → anonymous, no DB hit)
//  3. look up the session row (missing/expired → anonymous)
//  4. attach the session's user id to the request context
func Identity(tokens *TokenService, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := resolveUserID(r, tokens, sessions); ok {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFrom retrieves the resolved user id from the request context.
// Returns (0, false) for anonymous requests.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func resolveUserID(r *http.Request, tokens *TokenService, sessions repository.SessionRepository) (int64, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}

	sessionID, err := tokens.Validate(cookie.Value)
	if err != nil {
		return 0, false
	}

	session, err := sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		return 0, false
	}
	if time.Now().After(session.ExpiresAt) {
		return 0, false
	}

	return session.UserID, true
}
