package rating

import "github.com/ternarybob/stockanalyzer/internal/models"

// Threshold scores a metric against a bullish and a bearish bound. When Bullish is
// below Bearish, low values are bullish (PER, low-coverage analyst estimation).
type Threshold struct {
	Bullish   float64
	Bearish   float64
	Inclusive bool // the bounds themselves already score
}

// Rate returns 1 past the bullish bound, -1 past the bearish bound, else 0
func (t Threshold) Rate(v float64) int {
	if t.Bullish >= t.Bearish {
		switch {
		case v > t.Bullish || (t.Inclusive && v == t.Bullish):
			return 1
		case v < t.Bearish || (t.Inclusive && v == t.Bearish):
			return -1
		}
		return 0
	}
	switch {
	case v < t.Bullish || (t.Inclusive && v == t.Bullish):
		return 1
	case v > t.Bearish || (t.Inclusive && v == t.Bearish):
		return -1
	}
	return 0
}

// Thresholds is the rating table of one stock type
type Thresholds struct {
	ROE               Threshold
	EBIT              Threshold
	EquityRatio       Threshold
	Per5Years         Threshold
	PerCurrent        Threshold
	AnalystEstimation Threshold
	Reaction          Threshold
	RateProgress      Threshold
	ProfitGrowth      Threshold
	EarningsRevision  Threshold

	// RateEBIT is false where the EBIT margin carries no signal
	RateEBIT bool

	// RateReversal is false for stock types rated without the 3-month reversal
	RateReversal bool

	// LowCoverageMaxCount > 0 rates with LowCoverageAnalyst when fewer analysts
	// than this cover the stock
	LowCoverageMaxCount int
	LowCoverageAnalyst  Threshold
}

var defaultThresholds = Thresholds{
	ROE:               Threshold{Bullish: 20, Bearish: 10},
	EBIT:              Threshold{Bullish: 12, Bearish: 6},
	EquityRatio:       Threshold{Bullish: 25, Bearish: 15},
	Per5Years:         Threshold{Bullish: 12, Bearish: 16},
	PerCurrent:        Threshold{Bullish: 12, Bearish: 16},
	AnalystEstimation: Threshold{Bullish: 2.5, Bearish: 1.5, Inclusive: true},
	Reaction:          Threshold{Bullish: 1, Bearish: -1, Inclusive: true},
	RateProgress:      Threshold{Bullish: 5, Bearish: -5},
	ProfitGrowth:      Threshold{Bullish: 5, Bearish: -5},
	EarningsRevision:  Threshold{Bullish: 5, Bearish: -5},
	RateEBIT:          true,
	RateReversal:      true,
}

// ThresholdsFor returns the rating table of a stock type
func ThresholdsFor(t models.StockType) Thresholds {
	th := defaultThresholds
	switch t {
	case models.StockTypeLargeFinance:
		th.RateEBIT = false
		th.EquityRatio = Threshold{Bullish: 10, Bearish: 5}
	case models.StockTypeMidCap:
		th.RateReversal = false
	case models.StockTypeSmallCap:
		th.RateReversal = false
		th.LowCoverageMaxCount = 5
		th.LowCoverageAnalyst = Threshold{Bullish: 1.5, Bearish: 2.5, Inclusive: true}
	}
	return th
}

// NeedsReversal reports whether the 3-month reversal is part of the rating
func NeedsReversal(t models.StockType) bool {
	return ThresholdsFor(t).RateReversal
}
