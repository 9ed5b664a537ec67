// Package quotes provides historical closes and the price statistics used for rating.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// ErrInvalidRange is returned when from is not before to
var ErrInvalidRange = errors.New("invalid date range")

// Service implements interfaces.QuoteProvider on top of one Source
type Service struct {
	source Source
	backup *IndexBackup
	logger arbor.ILogger
	now    func() time.Time
}

var _ interfaces.QuoteProvider = (*Service)(nil)

// NewService creates a quote service. backup may be nil.
func NewService(source Source, backup *IndexBackup, logger arbor.ILogger) *Service {
	return &Service{
		source: source,
		backup: backup,
		logger: logger,
		now:    time.Now,
	}
}

// QueryQuotes returns the closes of symbol within [from, to], oldest first. The
// provider codes of the symbol are tried in order; the first non-empty result wins.
// An empty series with a nil error means no code had data.
func (s *Service) QueryQuotes(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	from, to = models.Day(from), models.Day(to)
	if from.Equal(to) {
		return nil, fmt.Errorf("%w: from and to are both %s", ErrInvalidRange, from.Format(models.DateLayout))
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, from.Format(models.DateLayout), to.Format(models.DateLayout))
	}

	for _, code := range s.source.Codes(symbol) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := s.source.Fetch(ctx, code, from, to)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("source", s.source.Name()).
				Str("code", code.Code).
				Msg("Quote query failed, trying next code")
			continue
		}

		series = within(series, from, to)
		if len(series) == 0 {
			s.logger.Debug().
				Str("source", s.source.Name()).
				Str("code", code.Code).
				Str("from", from.Format(models.DateLayout)).
				Str("to", to.Format(models.DateLayout)).
				Msg("No quotes for code")
			continue
		}

		return series, nil
	}

	return models.PriceSeries{}, nil
}

// within keeps the quotes of the closed interval [from, to], oldest first
func within(series models.PriceSeries, from, to time.Time) models.PriceSeries {
	out := make(models.PriceSeries, 0, len(series))
	for _, q := range series {
		d := models.Day(q.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		q.Date = d
		out = append(out, q)
	}
	return out.SortedAscending()
}
