package models

import (
	"strings"
	"time"
)

// StockType categorises a stock for rating thresholds
type StockType string

const (
	StockTypeLargeCap     StockType = "LARGE_CAP"
	StockTypeMidCap       StockType = "MID_CAP"
	StockTypeSmallCap     StockType = "SMALL_CAP"
	StockTypeLargeFinance StockType = "LARGE_FINANCE"
	StockTypeMidFinance   StockType = "MID_FINANCE"
	StockTypeSmallFinance StockType = "SMALL_FINANCE"
)

// IsFinance reports whether the stock belongs to the financial sector
func (t StockType) IsFinance() bool {
	return t == StockTypeLargeFinance || t == StockTypeMidFinance || t == StockTypeSmallFinance
}

// IsSmallOrMid reports whether the stock is a small or mid cap, finance included
func (t StockType) IsSmallOrMid() bool {
	switch t {
	case StockTypeMidCap, StockTypeSmallCap, StockTypeMidFinance, StockTypeSmallFinance:
		return true
	}
	return false
}

// StockIndex is the benchmark index a stock is compared against
type StockIndex struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	BackupURL string `json:"backup_url,omitempty"` // Prefix for the backup index source, date appended as dd.MM.yyyy
}

// URLType identifies which page a FundamentalDataURL points at
type URLType string

const (
	URLTypeOnvistaFundamentalData URLType = "ONVISTA_FUNDAMENTAL_DATA"
	URLTypeEarningsRevision       URLType = "EARNINGS_REVISION"
	URLTypeDibaAnalystEstimation  URLType = "DIBA_ANALYST_ESTIMATION"
	URLTypeYahooAnalystEstimation URLType = "YAHOO_ANALYST_ESTIMATION"
)

// FundamentalDataURL is a source page for one kind of fundamental data
type FundamentalDataURL struct {
	Type URLType `json:"type" validate:"required"`
	URL  string  `json:"url" validate:"required,url"`
}

// EarningsPerShare is one snapshot of the EPS estimates
type EarningsPerShare struct {
	EpsCurrentYear float64 `json:"eps_current_year"`
	EpsNextYear    float64 `json:"eps_next_year"`
}

// Ratings holds the 13 sub-ratings, each in {-1, 0, 1}
type Ratings struct {
	ROE                  int `json:"roe"`
	EBIT                 int `json:"ebit"`
	EquityRatio          int `json:"equity_ratio"`
	Per5Years            int `json:"per_5_years"`
	PerCurrent           int `json:"per_current"`
	AnalystEstimation    int `json:"analyst_estimation"`
	LastQuarterlyFigures int `json:"last_quarterly_figures"`
	RateProgress6Month   int `json:"rate_progress_6_month"`
	RateProgress1Year    int `json:"rate_progress_1_year"`
	RateMomentum         int `json:"rate_momentum"`
	Reversal3Month       int `json:"reversal_3_month"`
	ProfitGrowth         int `json:"profit_growth"`
	EarningsRevision     int `json:"earnings_revision"`
}

// Sum returns the unweighted sum of all sub-ratings
func (r Ratings) Sum() int {
	return r.ROE + r.EBIT + r.EquityRatio + r.Per5Years + r.PerCurrent +
		r.AnalystEstimation + r.LastQuarterlyFigures + r.RateProgress6Month +
		r.RateProgress1Year + r.RateMomentum + r.Reversal3Month + r.ProfitGrowth +
		r.EarningsRevision
}

// FundamentalMetrics is the persisted fundamental data record of one stock
type FundamentalMetrics struct {
	// Identity
	ID     string `json:"id" badgerhold:"key"`
	Symbol string `json:"symbol" validate:"required" badgerhold:"index"`
	Name   string `json:"name"`

	// Parsed values
	Date                 time.Time                   `json:"date"`
	BusinessYears        []string                    `json:"business_years"`
	ROE                  float64                     `json:"roe"`
	EBIT                 float64                     `json:"ebit"`
	EquityRatio          float64                     `json:"equity_ratio"`
	MarketCapitalization float64                     `json:"market_capitalization"`
	Ask                  float64                     `json:"ask"`
	EpsCurrentYear       float64                     `json:"eps_current_year"`
	EpsNextYear          float64                     `json:"eps_next_year"`
	EpsHistory           map[string]EarningsPerShare `json:"eps_history"`
	PerCurrent           float64                     `json:"per_current"`
	Per5Years            float64                     `json:"per_5_years"`

	// Externally populated values
	EarningsRevision       float64 `json:"earnings_revision"`
	AnalystEstimation      float64 `json:"analyst_estimation"`
	AnalystEstimationCount int     `json:"analyst_estimation_count"`

	// Derived while rating
	ProfitGrowth               float64   `json:"profit_growth"`
	ReactionToQuarterlyFigures float64   `json:"reaction_to_quarterly_figures"`
	RateProgress6Month         float64   `json:"rate_progress_6_month"`
	RateProgress1Year          float64   `json:"rate_progress_1_year"`
	Reversal3Month             []float64 `json:"reversal_3_month"`

	// Classification and sources
	StockType  StockType            `json:"stock_type" validate:"required,oneof=LARGE_CAP MID_CAP SMALL_CAP LARGE_FINANCE MID_FINANCE SMALL_FINANCE"`
	StockIndex *StockIndex          `json:"stock_index,omitempty"`
	URLs       []FundamentalDataURL `json:"urls" validate:"dive"`

	// Ratings
	Ratings       Ratings `json:"ratings"`
	OverallRating int     `json:"overall_rating"`

	// Scheduling
	LastQuarterlyFigures *time.Time `json:"last_quarterly_figures,omitempty"`
	NextQuarterlyFigures *time.Time `json:"next_quarterly_figures,omitempty"`
	AutomaticRating      bool       `json:"automatic_rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFundamentalMetrics returns an empty large-cap record for a symbol
func NewFundamentalMetrics(symbol string) *FundamentalMetrics {
	return &FundamentalMetrics{
		Symbol:     symbol,
		StockType:  StockTypeLargeCap,
		EpsHistory: make(map[string]EarningsPerShare),
	}
}

// BaseSymbol returns the ticker without its exchange suffix
func (f *FundamentalMetrics) BaseSymbol() string {
	return strings.SplitN(f.Symbol, ".", 2)[0]
}

// DisplayName returns "Name (SYMBOL)" for notifications
func (f *FundamentalMetrics) DisplayName() string {
	if f.Name == "" {
		return f.Symbol
	}
	return f.Name + " (" + f.Symbol + ")"
}

// IndexSymbol returns the symbol of the benchmark index, or "" when unset
func (f *FundamentalMetrics) IndexSymbol() string {
	if f.StockIndex == nil {
		return ""
	}
	return f.StockIndex.Symbol
}

// URL returns the first URL of the given type
func (f *FundamentalMetrics) URL(t URLType) (string, bool) {
	for _, u := range f.URLs {
		if u.Type == t {
			return u.URL, true
		}
	}
	return "", false
}

// Year label accessors over BusinessYears [next, current, last, twoAgo, threeAgo]

func (f *FundamentalMetrics) NextYear() string      { return f.businessYear(0) }
func (f *FundamentalMetrics) CurrentYear() string   { return f.businessYear(1) }
func (f *FundamentalMetrics) LastYear() string      { return f.businessYear(2) }
func (f *FundamentalMetrics) TwoYearsAgo() string   { return f.businessYear(3) }
func (f *FundamentalMetrics) ThreeYearsAgo() string { return f.businessYear(4) }

func (f *FundamentalMetrics) businessYear(i int) string {
	if i < len(f.BusinessYears) {
		return f.BusinessYears[i]
	}
	return ""
}
