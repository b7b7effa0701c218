package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mdewit/quoter/internal/apperror"
	"github.com/mdewit/quoter/internal/auth"
	"github.com/mdewit/quoter/internal/service"
)

// AuthHandler manages sign-in and sign-out.
//
// Authentication failures here are business outcomes, not HTTP errors: a
// wrong password redirects back to the listing with a message in the query
// string, it never returns 401.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

// HandleSignIn signs a user in, registering them on demand.
//
// HTTP: POST /signin  (form fields: username, password)
//
// On success the signed session token is set as the identity cookie:
//   - HttpOnly: page scripts cannot read it (XSS containment)
//   - Secure: never sent over plaintext HTTP
//   - SameSite=Lax: not attached to cross-site POSTs
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !r.PostForm.Has("username") || !r.PostForm.Has("password") {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.auth.SignIn(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, apperror.ErrUnauthorized) && errors.As(err, &appErr):
			// Wrong password for an existing name — back to the listing
			// with the message percent-encoded in the query string.
			http.Redirect(w, r, "/?error="+url.QueryEscape(appErr.Message), http.StatusSeeOther)
		case errors.Is(err, apperror.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("sign-in failed", slog.String("error", err.Error()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignOut invalidates the session server-side and clears the cookie.
//
// HTTP: GET /signout
//
// Signing out without a session (or with a mangled cookie) still just
// redirects home — there is nothing useful to report.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		if err := h.auth.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger.Error("sign-out failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
