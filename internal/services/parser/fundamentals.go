// Package parser extracts fundamental data from the onvista, finanzen.net, ING-DiBa
// and Yahoo pages.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"gonum.org/v1/gonum/stat"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// ErrNoCurrentPrice is returned when no close was found for the current price
var ErrNoCurrentPrice = errors.New("no current price found")

// currentPriceAttempts bounds the backward walk for the current price
const currentPriceAttempts = 7

// Section and row labels of the onvista fundamentals page
const (
	sectionEarnings      = "Gewinn"
	sectionProfitability = "Rentabilität"
	sectionBalanceSheet  = "Bilanz"

	rowEarningsPerShare     = "Gewinn pro Aktie in EUR"
	rowReturnOnEquity       = "Eigenkapitalrendite"
	rowEBITMargin           = "EBIT-Marge"
	rowMarketCapitalization = "Marktkapitalisierung in Mio. EUR"
	rowEquityRatio          = "Eigenkapitalquote"
)

// FundamentalsParser builds FundamentalMetrics from an onvista fundamentals page
type FundamentalsParser struct {
	quotes interfaces.QuoteProvider
	logger arbor.ILogger
	now    func() time.Time
}

// NewFundamentalsParser creates a parser that resolves the current price through quotes
func NewFundamentalsParser(quotes interfaces.QuoteProvider, logger arbor.ILogger) *FundamentalsParser {
	return &FundamentalsParser{
		quotes: quotes,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for business years and the price lookup
func (p *FundamentalsParser) SetClock(now func() time.Time) {
	p.now = now
}

// Parse returns a copy of existing populated from html. Any failure aborts the whole
// parse and no record is returned.
func (p *FundamentalsParser) Parse(ctx context.Context, html string, existing *models.FundamentalMetrics) (*models.FundamentalMetrics, error) {
	if existing == nil || existing.Symbol == "" {
		return nil, fmt.Errorf("parse requires a record with a symbol")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	now := p.now()
	fd := copyRecord(existing)
	fd.Date = now

	fye, err := fiscalYearEnd(doc)
	if err != nil {
		return nil, err
	}
	years, err := ResolveBusinessYears(fye, now)
	if err != nil {
		return nil, err
	}
	fd.BusinessYears = years

	earningYears := yearHeaders(doc, sectionEarnings)
	profitabilityYears := yearHeaders(doc, sectionProfitability)
	balanceSheetYears := yearHeaders(doc, sectionBalanceSheet)

	p.logger.Debug().
		Str("symbol", fd.Symbol).
		Str("fiscal_year_end", fye).
		Str("business_years", strings.Join(years, ",")).
		Int("earning_years", len(earningYears)).
		Int("profitability_years", len(profitabilityYears)).
		Int("balance_sheet_years", len(balanceSheetYears)).
		Msg("Resolved year labels")

	if fd.ROE, err = p.lastYearValue(doc, fd, rowReturnOnEquity, profitabilityYears, isNumber, parseNumber); err != nil {
		return nil, err
	}

	if fd.StockType.IsFinance() {
		fd.EBIT = 0
	} else if fd.EBIT, err = p.lastYearValue(doc, fd, rowEBITMargin, profitabilityYears, isNumber, parseNumber); err != nil {
		return nil, err
	}

	if fd.MarketCapitalization, err = p.lastYearValue(doc, fd, rowMarketCapitalization, profitabilityYears, isGroupedNumber, parseGroupedNumber); err != nil {
		return nil, err
	}

	if fd.EquityRatio, err = p.lastYearValue(doc, fd, rowEquityRatio, balanceSheetYears, isNumber, parseNumber); err != nil {
		return nil, err
	}

	eps, err := metricTable(doc, rowEarningsPerShare, earningYears)
	if err != nil {
		return nil, err
	}

	price, err := p.currentPrice(ctx, fd.Symbol, now)
	if err != nil {
		return nil, err
	}
	fd.Ask = price

	if !isNumber(eps[fd.NextYear()]) {
		p.logger.Warn().
			Str("symbol", fd.Symbol).
			Str("next_year", fd.NextYear()).
			Msg("EPS of next year is not a number, shifting to current and last year")
		fd.EpsNextYear = parseNumberOrZero(eps[fd.CurrentYear()])
		fd.EpsCurrentYear = parseNumberOrZero(lastYearEPS(eps, fd))
	} else {
		fd.EpsNextYear = parseNumberOrZero(eps[fd.NextYear()])
		fd.EpsCurrentYear = parseNumberOrZero(eps[fd.CurrentYear()])
	}

	fd.EpsHistory[now.Format(models.DateLayout)] = models.EarningsPerShare{
		EpsCurrentYear: fd.EpsCurrentYear,
		EpsNextYear:    fd.EpsNextYear,
	}

	fd.Per5Years = Per5Years(price,
		parseNumberOrZero(eps[fd.NextYear()]),
		parseNumberOrZero(eps[fd.CurrentYear()]),
		parseNumberOrZero(lastYearEPS(eps, fd)),
		parseNumberOrZero(eps[fd.TwoYearsAgo()]),
		parseNumberOrZero(eps[fd.ThreeYearsAgo()]),
	)
	fd.PerCurrent = PerCurrent(price, parseNumberOrZero(eps[fd.CurrentYear()]))

	p.logger.Info().
		Str("symbol", fd.Symbol).
		Float64("ask", fd.Ask).
		Float64("roe", fd.ROE).
		Float64("ebit", fd.EBIT).
		Float64("equity_ratio", fd.EquityRatio).
		Float64("eps_current_year", fd.EpsCurrentYear).
		Float64("eps_next_year", fd.EpsNextYear).
		Float64("per_current", fd.PerCurrent).
		Float64("per_5_years", fd.Per5Years).
		Msg("Parsed fundamental data")

	return fd, nil
}

// lastYearValue resolves the last business year's value of one row. numeric decides
// which cells count as values and must agree with parse.
func (p *FundamentalsParser) lastYearValue(
	doc *goquery.Document,
	fd *models.FundamentalMetrics,
	rowLabel string,
	years []string,
	numeric func(string) bool,
	parse func(string) (float64, error),
) (float64, error) {
	table, err := metricTable(doc, rowLabel, years)
	if err != nil {
		return 0, err
	}
	raw, ok := table.ResolveWith(fd.LastYear(), fd.TwoYearsAgo(), numeric)
	if !ok {
		return 0, fmt.Errorf("%s: no numeric value for %s, %se or %s", rowLabel, fd.LastYear(), fd.LastYear(), fd.TwoYearsAgo())
	}
	return parse(raw)
}

// currentPrice returns the close of the most recent trading day, stepping back one
// day per attempt
func (p *FundamentalsParser) currentPrice(ctx context.Context, symbol string, now time.Time) (float64, error) {
	day := models.Day(now)
	for attempt := 0; attempt < currentPriceAttempts; attempt++ {
		series, err := p.quotes.QueryQuotes(ctx, symbol, day.AddDate(0, 0, -1), day)
		if err != nil {
			p.logger.Warn().Err(err).Str("symbol", symbol).Int("attempt", attempt+1).Msg("Quote query failed")
		} else if q, ok := series.Earliest(); ok && q.Close > 0 {
			return q.Close, nil
		}
		day = day.AddDate(0, 0, -1)
	}
	return 0, fmt.Errorf("%w for %s after %d attempts", ErrNoCurrentPrice, symbol, currentPriceAttempts)
}

// lastYearEPS falls back to the estimate when the last year has not been reported yet
func lastYearEPS(eps MetricTable, fd *models.FundamentalMetrics) string {
	if v, ok := eps[fd.LastYear()]; ok {
		return v
	}
	return eps[fd.LastYear()+"e"]
}

// Per5Years divides price by the average EPS of five years. A missing next-year
// estimate is left out of the average when the other four years are present.
// Returns 0 when the average is 0.
func Per5Years(price, next, current, last, twoAgo, threeAgo float64) float64 {
	values := []float64{next, current, last, twoAgo, threeAgo}
	if next == 0 && current != 0 && last != 0 && twoAgo != 0 && threeAgo != 0 {
		values = values[1:]
	}
	avg := stat.Mean(values, nil)
	if avg == 0 {
		return 0
	}
	return price / avg
}

// PerCurrent divides price by the current year's EPS, 0 when the EPS is 0
func PerCurrent(price, epsCurrentYear float64) float64 {
	if epsCurrentYear == 0 {
		return 0
	}
	return price / epsCurrentYear
}

func copyRecord(existing *models.FundamentalMetrics) *models.FundamentalMetrics {
	fd := *existing
	fd.EpsHistory = make(map[string]models.EarningsPerShare, len(existing.EpsHistory)+1)
	for k, v := range existing.EpsHistory {
		fd.EpsHistory[k] = v
	}
	fd.BusinessYears = append([]string(nil), existing.BusinessYears...)
	fd.URLs = append([]models.FundamentalDataURL(nil), existing.URLs...)
	fd.Reversal3Month = append([]float64(nil), existing.Reversal3Month...)
	return &fd
}
