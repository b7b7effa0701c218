package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mdewit/quoter/internal/apperror"
	"github.com/mdewit/quoter/internal/auth"
	"github.com/mdewit/quoter/internal/model"
	"github.com/mdewit/quoter/internal/service"
)

// QuoteHandler serves the quote listing and detail pages and accepts new
// quotes and comments.
type QuoteHandler struct {
	quotes   *service.QuoteService
	renderer *Renderer
	logger   *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes *service.QuoteService, renderer *Renderer, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, renderer: renderer, logger: logger}
}

// indexData is what the listing template receives: the quotes, the resolved
// user id (nil when anonymous), and an optional error banner carried in the
// query string.
type indexData struct {
	Quotes []model.Quote
	UserID *int64
	Error  string
}

// quoteData is what the detail template receives.
type quoteData struct {
	Quote    *model.Quote
	Comments []model.Comment
	UserID   *int64
}

// HandleIndex serves the main page.
//
// HTTP: GET /?error=...
func (h *QuoteHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quotes.ListQuotes(r.Context())
	if err != nil {
		h.serverError(w, "listing quotes", err)
		return
	}

	h.renderer.Render(w, "index", indexData{
		Quotes: quotes,
		UserID: userIDPtr(r),
		Error:  r.URL.Query().Get("error"),
	})
}

// HandleQuote serves a quote's detail page with its comments.
//
// HTTP: GET /quotes/{id}
//
// A non-integer id or a missing quote both end in 404 — referencing a quote
// that does not exist is a client-visible not-found, never a store fault.
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	quote, comments, err := h.quotes.GetQuoteWithComments(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, "loading quote", err)
		return
	}

	h.renderer.Render(w, "quote", quoteData{
		Quote:    quote,
		Comments: comments,
		UserID:   userIDPtr(r),
	})
}

// HandleCreateQuote accepts a new quote and redirects back to the listing.
//
// HTTP: POST /quotes  (form fields: text, attribution)
//
// Presence of both fields is the only validation — an empty string is a
// valid value. 303 See Other makes the browser re-GET the listing instead of
// re-POSTing on refresh.
func (h *QuoteHandler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !r.PostForm.Has("text") || !r.PostForm.Has("attribution") {
		http.Error(w, "text and attribution are required", http.StatusBadRequest)
		return
	}

	err := h.quotes.PostQuote(r.Context(), r.PostForm.Get("text"), r.PostForm.Get("attribution"))
	if err != nil {
		h.serverError(w, "posting quote", err)
		return
	}

	http.Redirect(w, r, "/#bottom", http.StatusSeeOther)
}

// HandleCreateComment accepts a comment on a quote.
//
// HTTP: POST /quotes/{id}/comments  (form field: text)
//
// The author is whatever identity the middleware resolved — nil means the
// comment is stored as anonymous, which is allowed.
func (h *QuoteHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !r.PostForm.Has("text") {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	err = h.quotes.PostComment(r.Context(), quoteID, r.PostForm.Get("text"), userIDPtr(r))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, "posting comment", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/quotes/%d#bottom", quoteID), http.StatusSeeOther)
}

func (h *QuoteHandler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// userIDPtr converts the context identity into the nullable form the
// templates and the comment insert use.
func userIDPtr(r *http.Request) *int64 {
	if id, ok := auth.UserIDFrom(r.Context()); ok {
		return &id
	}
	return nil
}
