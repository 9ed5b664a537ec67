package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// QuoteQuerier returns historical closes of a symbol
type QuoteQuerier interface {
	QueryQuotes(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error)
}

// ExchangeRatePrefix is the path prefix of the exchange-rate route
const ExchangeRatePrefix = "/api/exchange-rate/"

// ExchangeRateHandler serves historical closes
type ExchangeRateHandler struct {
	quotes QuoteQuerier
	logger arbor.ILogger
	now    func() time.Time
}

// NewExchangeRateHandler creates a new exchange-rate handler
func NewExchangeRateHandler(quotes QuoteQuerier, logger arbor.ILogger) *ExchangeRateHandler {
	return &ExchangeRateHandler{
		quotes: quotes,
		logger: logger,
		now:    time.Now,
	}
}

// GetHandler handles GET /api/exchange-rate/{symbol}?from=YYYY-MM-DD&to=YYYY-MM-DD.
// The range defaults to the last year.
func (h *ExchangeRateHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathSegment(r.URL.Path, ExchangeRatePrefix)
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	today := models.Day(h.now())
	from, err := queryDate(r, "from", today.AddDate(-1, 0, 0))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	to, err := queryDate(r, "to", today)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	series, err := h.quotes.QueryQuotes(r.Context(), symbol, from, to)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if series == nil {
		series = models.PriceSeries{}
	}
	WriteJSON(w, http.StatusOK, series)
}

func queryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, key)
	}
	return t, nil
}
