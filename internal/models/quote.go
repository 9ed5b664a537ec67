package models

import (
	"sort"
	"time"
)

// DateLayout is the ISO calendar date layout used by quote sources and the API
const DateLayout = "2006-01-02"

// Quote is the closing price of a symbol on one trading day
type Quote struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// DateString returns the quote date as YYYY-MM-DD
func (q Quote) DateString() string {
	return q.Date.Format(DateLayout)
}

// PriceSeries is a list of quotes. Producers may return any order; use the
// accessors instead of indexing directly.
type PriceSeries []Quote

// SortedAscending returns a copy ordered by date, oldest first
func (s PriceSeries) SortedAscending() PriceSeries {
	out := make(PriceSeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Latest returns the most recent quote
func (s PriceSeries) Latest() (Quote, bool) {
	if len(s) == 0 {
		return Quote{}, false
	}
	latest := s[0]
	for _, q := range s[1:] {
		if q.Date.After(latest.Date) {
			latest = q
		}
	}
	return latest, true
}

// Earliest returns the oldest quote
func (s PriceSeries) Earliest() (Quote, bool) {
	if len(s) == 0 {
		return Quote{}, false
	}
	earliest := s[0]
	for _, q := range s[1:] {
		if q.Date.Before(earliest.Date) {
			earliest = q
		}
	}
	return earliest, true
}

// ProviderCode is one candidate identifier for querying a quote source
type ProviderCode struct {
	Symbol      string `json:"symbol"`
	Code        string `json:"code"`
	Currency    string `json:"currency,omitempty"`
	CloseColumn string `json:"close_column,omitempty"`
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const (
	// ReactionSentinel marks a reaction to quarterly figures that could not be computed
	ReactionSentinel = -9999.0
	// ReversalSentinel is the single element returned when a reversal cannot be computed
	ReversalSentinel = -999.0
)

// PriceMetrics holds the price-series statistics consumed by the rating engine
type PriceMetrics struct {
	ReactionToQuarterlyFigures float64   `json:"reaction_to_quarterly_figures"`
	RateProgress6Month         float64   `json:"rate_progress_6_month"`
	RateProgress1Year          float64   `json:"rate_progress_1_year"`
	Reversal3Month             []float64 `json:"reversal_3_month"`
}

// IsReactionSentinel reports whether v is the "insufficient data" reaction value
func IsReactionSentinel(v float64) bool {
	return v == ReactionSentinel
}

// IsReversalSentinel reports whether r is the "insufficient data" reversal list
func IsReversalSentinel(r []float64) bool {
	return len(r) == 1 && r[0] == ReversalSentinel
}
