package quotes

import (
	"context"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// Bounded backward walks when a date has no trading data
const (
	reactionAttempts = 7
	progressAttempts = 10
)

// rateProgress is the change between the closes found for two anchor dates
type rateProgress struct {
	base    models.Quote
	compare models.Quote
	percent float64
}

// ReactionToQuarterlyFigures returns the stock's return minus its index's return over
// the last two trading days up to the last quarterly figures date
func (s *Service) ReactionToQuarterlyFigures(ctx context.Context, fd *models.FundamentalMetrics) float64 {
	if fd.LastQuarterlyFigures == nil || fd.Symbol == "" || fd.IndexSymbol() == "" {
		return models.ReactionSentinel
	}

	date := models.Day(*fd.LastQuarterlyFigures)
	from := date.AddDate(0, 0, -1)

	var series models.PriceSeries
	for attempt := 0; attempt < reactionAttempts; attempt++ {
		var err error
		series, err = s.QueryQuotes(ctx, fd.Symbol, from, date)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", fd.Symbol).Msg("Reaction quotes unavailable")
			return models.ReactionSentinel
		}
		if len(series) >= 2 {
			break
		}
		from = from.AddDate(0, 0, -1)
	}
	if len(series) < 2 {
		s.logger.Warn().
			Str("symbol", fd.Symbol).
			Str("date", date.Format(models.DateLayout)).
			Msg("Not enough quotes around quarterly figures")
		return models.ReactionSentinel
	}

	prior, last := series[len(series)-2], series[len(series)-1]
	indexPrior, ok := s.indexClose(ctx, fd.StockIndex, prior.Date)
	if !ok {
		return models.ReactionSentinel
	}
	indexLast, ok := s.indexClose(ctx, fd.StockIndex, last.Date)
	if !ok || last.Close == 0 {
		return models.ReactionSentinel
	}

	progressSymbol := (1 - prior.Close/last.Close) * 100
	progressIndex := (1 - indexPrior/indexLast) * 100

	s.logger.Debug().
		Str("symbol", fd.Symbol).
		Str("index", fd.IndexSymbol()).
		Float64("progress_symbol", progressSymbol).
		Float64("progress_index", progressIndex).
		Msg("Reaction to quarterly figures")

	return progressSymbol - progressIndex
}

// RateProgress6Month returns the price change in percent over the last six months,
// 0 when no quotes were found
func (s *Service) RateProgress6Month(ctx context.Context, fd *models.FundamentalMetrics) float64 {
	today := models.Day(s.now())
	return s.progressOrZero(ctx, fd.Symbol, today, monthsBefore(today, 6))
}

// RateProgress1Year returns the price change in percent over the last year,
// 0 when no quotes were found
func (s *Service) RateProgress1Year(ctx context.Context, fd *models.FundamentalMetrics) float64 {
	today := models.Day(s.now())
	return s.progressOrZero(ctx, fd.Symbol, today, monthsBefore(today, 12))
}

func (s *Service) progressOrZero(ctx context.Context, symbol string, base, compare time.Time) float64 {
	p, ok := s.rateProgress(ctx, symbol, base, compare)
	if !ok {
		s.logger.Warn().
			Str("symbol", symbol).
			Str("base", base.Format(models.DateLayout)).
			Str("compare", compare.Format(models.DateLayout)).
			Msg("Rate progress unavailable")
		return 0
	}
	return p.percent
}

// Reversal3Month returns, for each of the last three completed months, the stock's
// month-end to month-end change minus its index's change
func (s *Service) Reversal3Month(ctx context.Context, fd *models.FundamentalMetrics) []float64 {
	if fd.Symbol == "" || fd.IndexSymbol() == "" {
		return []float64{models.ReversalSentinel}
	}

	today := models.Day(s.now())
	ends := make([]time.Time, 4)
	for i := range ends {
		ends[i] = endOfMonthBefore(today, i+1)
	}

	reversal := make([]float64, 0, 3)
	for i := 0; i < 3; i++ {
		p, ok := s.rateProgress(ctx, fd.Symbol, ends[i], ends[i+1])
		if !ok {
			return []float64{models.ReversalSentinel}
		}
		indexPercent, ok := s.indexProgress(ctx, fd.StockIndex, p.base.Date, p.compare.Date)
		if !ok {
			return []float64{models.ReversalSentinel}
		}
		reversal = append(reversal, p.percent-indexPercent)
	}

	return reversal
}

// rateProgress finds a close for both anchors independently and compares them
func (s *Service) rateProgress(ctx context.Context, symbol string, base, compare time.Time) (rateProgress, bool) {
	baseQuote, ok := s.closeNear(ctx, symbol, base)
	if !ok {
		return rateProgress{}, false
	}
	compareQuote, ok := s.closeNear(ctx, symbol, compare)
	if !ok || compareQuote.Close == 0 {
		return rateProgress{}, false
	}
	return rateProgress{
		base:    baseQuote,
		compare: compareQuote,
		percent: (baseQuote.Close - compareQuote.Close) / compareQuote.Close * 100,
	}, true
}

// closeNear returns the latest quote in [day-1, day], widening the window by one day
// per attempt
func (s *Service) closeNear(ctx context.Context, symbol string, day time.Time) (models.Quote, bool) {
	from := day.AddDate(0, 0, -1)
	for attempt := 0; attempt < progressAttempts; attempt++ {
		series, err := s.QueryQuotes(ctx, symbol, from, day)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote query failed")
			return models.Quote{}, false
		}
		if q, ok := series.Latest(); ok {
			return q, true
		}
		from = from.AddDate(0, 0, -1)
	}
	return models.Quote{}, false
}

func (s *Service) indexProgress(ctx context.Context, index *models.StockIndex, base, compare time.Time) (float64, bool) {
	baseClose, ok := s.indexClose(ctx, index, base)
	if !ok {
		return 0, false
	}
	compareClose, ok := s.indexClose(ctx, index, compare)
	if !ok || compareClose == 0 {
		return 0, false
	}
	return (baseClose - compareClose) / compareClose * 100, true
}

// indexClose returns the index close on date, or the latest close of the day before.
// The backup source is asked when the quote source has nothing.
func (s *Service) indexClose(ctx context.Context, index *models.StockIndex, date time.Time) (float64, bool) {
	series, err := s.QueryQuotes(ctx, index.Symbol, date.AddDate(0, 0, -1), date)
	if err == nil {
		for _, q := range series {
			if q.Date.Equal(date) && q.Close > 0 {
				return q.Close, true
			}
		}
		if q, ok := series.Latest(); ok && q.Close > 0 {
			return q.Close, true
		}
	}

	if s.backup != nil && index.BackupURL != "" {
		c, err := s.backup.CloseOn(ctx, *index, date)
		if err == nil && c > 0 {
			return c, true
		}
		s.logger.Warn().Err(err).Str("index", index.Symbol).Msg("Backup index close unavailable")
	}

	s.logger.Warn().
		Str("index", index.Symbol).
		Str("date", date.Format(models.DateLayout)).
		Msg("No index close")
	return 0, false
}

// monthsBefore subtracts n calendar months, clamping to the last day of the month
func monthsBefore(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	if last := endOfMonthBefore(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), n).Day(); d > last {
		d = last
	}
	return time.Date(y, m-time.Month(n), d, 0, 0, 0, 0, time.UTC)
}

// endOfMonthBefore returns the last day of the month n months before t
func endOfMonthBefore(t time.Time, n int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m-time.Month(n)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
