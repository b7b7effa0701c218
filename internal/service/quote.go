package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdewit/quoter/internal/model"
	"github.com/mdewit/quoter/internal/repository"
)

// QuoteService handles quote and comment operations.
type QuoteService struct {
	quotes repository.QuoteRepository
	logger *slog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes repository.QuoteRepository, logger *slog.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, logger: logger}
}

// ListQuotes returns all quotes in insertion order.
func (s *QuoteService) ListQuotes(ctx context.Context) ([]model.Quote, error) {
	quotes, err := s.quotes.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/quote: listing quotes: %w", err)
	}
	return quotes, nil
}

// GetQuoteWithComments returns one quote and its comments in insertion order.
// Propagates apperror.ErrNotFound when the quote does not exist.
func (s *QuoteService) GetQuoteWithComments(ctx context.Context, id int64) (*model.Quote, []model.Comment, error) {
	quote, err := s.quotes.GetQuote(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service/quote: getting quote %d: %w", id, err)
	}

	comments, err := s.quotes.ListComments(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service/quote: listing comments for quote %d: %w", id, err)
	}

	return quote, comments, nil
}

// PostQuote stores a new quote. Both fields must be present in the request;
// an empty string counts as present — no trimming or content rules beyond
// that.
func (s *QuoteService) PostQuote(ctx context.Context, text, attribution string) error {
	id, err := s.quotes.CreateQuote(ctx, text, attribution)
	if err != nil {
		return fmt.Errorf("service/quote: posting quote: %w", err)
	}

	s.logger.Info("quote posted", slog.Int64("quoteID", id))
	return nil
}

// PostComment stores a comment on a quote, attributed to userID or anonymous
// when userID is nil.
//
// The quote is read first so a missing quote surfaces as a clean not-found;
// the store's foreign key still backstops the window between the check and
// the insert.
func (s *QuoteService) PostComment(ctx context.Context, quoteID int64, text string, userID *int64) error {
	if _, err := s.quotes.GetQuote(ctx, quoteID); err != nil {
		return fmt.Errorf("service/quote: posting comment: %w", err)
	}

	id, err := s.quotes.CreateComment(ctx, text, quoteID, userID)
	if err != nil {
		return fmt.Errorf("service/quote: posting comment on quote %d: %w", quoteID, err)
	}

	s.logger.Info("comment posted",
		slog.Int64("commentID", id),
		slog.Int64("quoteID", quoteID),
		slog.Bool("anonymous", userID == nil),
	)
	return nil
}
