package quotes

import (
	"context"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/eodhd"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/quandl"
)

// Source is one upstream provider of daily closes
type Source interface {
	// Name identifies the provider in logs
	Name() string

	// Codes returns the provider codes to try for a symbol, in priority order
	Codes(symbol string) []models.ProviderCode

	// Fetch returns the closes of one provider code between from and to
	Fetch(ctx context.Context, code models.ProviderCode, from, to time.Time) (models.PriceSeries, error)
}

// EODHDSource reads closes from the EODHD end-of-day API
type EODHDSource struct {
	client *eodhd.Client
}

// NewEODHDSource creates an EODHD backed source
func NewEODHDSource(client *eodhd.Client) *EODHDSource {
	return &EODHDSource{client: client}
}

func (s *EODHDSource) Name() string { return "eodhd" }

// Codes maps exchange suffixes onto EODHD exchange codes
func (s *EODHDSource) Codes(symbol string) []models.ProviderCode {
	t := common.ParseTicker(symbol)
	code := func(suffix, currency string) models.ProviderCode {
		return models.ProviderCode{Symbol: t.Code, Code: t.Code + "." + suffix, Currency: currency, CloseColumn: "Close"}
	}

	if t.IsIndex {
		return []models.ProviderCode{{Symbol: t.Code, Code: t.Code + ".INDX", CloseColumn: "Close"}}
	}

	switch t.Exchange {
	case "F", "DE":
		return []models.ProviderCode{code("XETRA", "EUR"), code("F", "EUR")}
	case "US":
		return []models.ProviderCode{code("US", "USD")}
	case "AS":
		return []models.ProviderCode{code("AS", "EUR")}
	default:
		return []models.ProviderCode{code("US", "USD")}
	}
}

func (s *EODHDSource) Fetch(ctx context.Context, code models.ProviderCode, from, to time.Time) (models.PriceSeries, error) {
	rows, err := s.client.GetEOD(ctx, code.Code, eodhd.WithDateRange(from, to))
	if err != nil {
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(rows))
	for _, row := range rows {
		series = append(series, models.Quote{Symbol: code.Symbol, Date: row.Date, Close: row.Close})
	}
	return series, nil
}

// Quandl database prefixes
const (
	quandlFrankfurt       = "GOOG/FRA_"
	quandlFrankfurtSE     = "FSE/"
	quandlFrankfurtSuffix = "_X"
	quandlStuttgart       = "SSE/"
	quandlWiki            = "WIKI/"
	quandlNasdaq          = "GOOG/NASDAQ_"
)

// QuandlSource reads closes from Quandl datasets
type QuandlSource struct {
	client *quandl.Client
}

// NewQuandlSource creates a Quandl backed source
func NewQuandlSource(client *quandl.Client) *QuandlSource {
	return &QuandlSource{client: client}
}

func (s *QuandlSource) Name() string { return "quandl" }

// Codes maps exchange suffixes onto Quandl datasets
func (s *QuandlSource) Codes(symbol string) []models.ProviderCode {
	t := common.ParseTicker(symbol)
	code := func(dataset, currency, column string) models.ProviderCode {
		return models.ProviderCode{Symbol: t.Code, Code: dataset, Currency: currency, CloseColumn: column}
	}

	switch t.Exchange {
	case "F", "DE":
		return []models.ProviderCode{
			code(quandlFrankfurt+t.Code, "EUR", "Close"),
			code(quandlFrankfurtSE+t.Code+quandlFrankfurtSuffix, "EUR", "Close"),
			code(quandlStuttgart+t.Code, "EUR", "Last"),
		}
	case "US":
		return []models.ProviderCode{
			code(quandlWiki+t.Code, "USD", "Close"),
			code(quandlNasdaq+t.Code, "USD", "Close"),
		}
	default:
		return []models.ProviderCode{
			code(quandlWiki+t.Code, "USD", "Close"),
			code(quandlFrankfurt+t.Code, "EUR", "Close"),
			code(quandlNasdaq+t.Code, "USD", "Close"),
		}
	}
}

func (s *QuandlSource) Fetch(ctx context.Context, code models.ProviderCode, from, to time.Time) (models.PriceSeries, error) {
	ds, err := s.client.GetDataset(ctx, code.Code, from, to)
	if err != nil {
		return nil, err
	}

	points, err := ds.Series(code.CloseColumn)
	if err != nil {
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(points))
	for _, p := range points {
		series = append(series, models.Quote{Symbol: code.Symbol, Date: p.Date, Close: p.Value})
	}
	return series, nil
}
