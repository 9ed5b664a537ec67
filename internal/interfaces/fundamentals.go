package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// ErrNotFound is returned when no fundamental data record exists for a symbol
var ErrNotFound = errors.New("fundamental data not found")

// HTMLFetcher retrieves a page as text
type HTMLFetcher interface {
	// FetchText returns the body of url. One redirect hop is followed; non-2xx
	// responses and transport failures are returned as errors.
	FetchText(ctx context.Context, url string) (string, error)
}

// QuoteProvider produces historical closes and the derived price statistics
type QuoteProvider interface {
	// QueryQuotes returns the quotes of symbol within [from, to]. from must be before to.
	QueryQuotes(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error)

	// ReactionToQuarterlyFigures returns the stock's one-day return minus its index's
	// around the last quarterly figures, or models.ReactionSentinel.
	ReactionToQuarterlyFigures(ctx context.Context, fd *models.FundamentalMetrics) float64

	RateProgress6Month(ctx context.Context, fd *models.FundamentalMetrics) float64
	RateProgress1Year(ctx context.Context, fd *models.FundamentalMetrics) float64

	// Reversal3Month returns three monthly differentials versus the index, or
	// []float64{models.ReversalSentinel}.
	Reversal3Month(ctx context.Context, fd *models.FundamentalMetrics) []float64
}

// FundamentalsStorage persists fundamental data records
type FundamentalsStorage interface {
	LoadLatest(ctx context.Context, symbol string) (*models.FundamentalMetrics, error)
	Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error)
	List(ctx context.Context) ([]*models.FundamentalMetrics, error)
	Delete(ctx context.Context, symbol string) error
}

// Notifier sends a notification to the configured recipient
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}
