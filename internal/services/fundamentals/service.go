package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/services/parser"
	"github.com/ternarybob/stockanalyzer/internal/services/rating"
)

// ErrNoFundamentalURL is returned when neither the record nor the asset search
// yields a fundamentals page
var ErrNoFundamentalURL = errors.New("no fundamental data url")

// Service refreshes, rates and persists fundamental data records
type Service struct {
	storage        interfaces.FundamentalsStorage
	fetcher        interfaces.HTMLFetcher
	quotes         interfaces.QuoteProvider
	parser         *parser.FundamentalsParser
	assetSearchURL string
	logger         arbor.ILogger
}

// NewService creates a new fundamentals service
func NewService(
	storage interfaces.FundamentalsStorage,
	fetcher interfaces.HTMLFetcher,
	quotes interfaces.QuoteProvider,
	p *parser.FundamentalsParser,
	onvista common.OnvistaConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:        storage,
		fetcher:        fetcher,
		quotes:         quotes,
		parser:         p,
		assetSearchURL: onvista.AssetSearchURL,
		logger:         logger,
	}
}

// Get returns the latest record of symbol
func (s *Service) Get(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	return s.storage.LoadLatest(ctx, common.NormalizeTicker(symbol))
}

// List returns the latest record of every stock
func (s *Service) List(ctx context.Context) ([]*models.FundamentalMetrics, error) {
	return s.storage.List(ctx)
}

// Save stores fd as given
func (s *Service) Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error) {
	return s.storage.Save(ctx, fd)
}

// Delete removes every record of symbol
func (s *Service) Delete(ctx context.Context, symbol string) error {
	return s.storage.Delete(ctx, common.NormalizeTicker(symbol))
}

// EnableAutomaticRating lets the rating bot pick up symbol again
func (s *Service) EnableAutomaticRating(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	fd, err := s.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	fd.AutomaticRating = true
	return s.storage.Save(ctx, fd)
}

// EnableAllAutomaticRatings enables automatic rating for every stock and returns
// the number of records changed
func (s *Service) EnableAllAutomaticRatings(ctx context.Context) (int, error) {
	all, err := s.storage.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, fd := range all {
		if fd.AutomaticRating {
			continue
		}
		fd.AutomaticRating = true
		if _, err := s.storage.Save(ctx, fd); err != nil {
			return changed, fmt.Errorf("failed to enable automatic rating for %s: %w", fd.Symbol, err)
		}
		changed++
	}

	s.logger.Info().Int("changed", changed).Int("total", len(all)).Msg("Automatic ratings enabled")
	return changed, nil
}

// Refresh scrapes, rates and saves the fundamental data of symbol. A symbol without
// a stored record starts from an empty large-cap record.
func (s *Service) Refresh(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	symbol = common.NormalizeTicker(symbol)

	existing, err := s.storage.LoadLatest(ctx, symbol)
	if errors.Is(err, interfaces.ErrNotFound) {
		existing = models.NewFundamentalMetrics(symbol)
	} else if err != nil {
		return nil, err
	}

	link, err := s.fundamentalURL(ctx, existing)
	if err != nil {
		return nil, err
	}

	html, err := s.fetcher.FetchText(ctx, link)
	if err != nil {
		return nil, err
	}

	fd, err := s.parser.Parse(ctx, html, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fundamentals of %s: %w", symbol, err)
	}
	if _, ok := fd.URL(models.URLTypeOnvistaFundamentalData); !ok {
		fd.URLs = append(fd.URLs, models.FundamentalDataURL{Type: models.URLTypeOnvistaFundamentalData, URL: link})
	}

	s.applyAuxiliary(ctx, fd)

	pm := models.PriceMetrics{
		ReactionToQuarterlyFigures: s.quotes.ReactionToQuarterlyFigures(ctx, fd),
		RateProgress6Month:         s.quotes.RateProgress6Month(ctx, fd),
		RateProgress1Year:          s.quotes.RateProgress1Year(ctx, fd),
	}
	if rating.NeedsReversal(fd.StockType) {
		pm.Reversal3Month = s.quotes.Reversal3Month(ctx, fd)
	}

	rated := rating.Rate(fd, pm)

	saved, err := s.storage.Save(ctx, rated)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", saved.Symbol).
		Int("overall_rating", saved.OverallRating).
		Msg("Fundamentals refreshed")

	return saved, nil
}

// fundamentalURL prefers the stored page and falls back to the asset search
func (s *Service) fundamentalURL(ctx context.Context, fd *models.FundamentalMetrics) (string, error) {
	if link, ok := fd.URL(models.URLTypeOnvistaFundamentalData); ok {
		return link, nil
	}
	if s.assetSearchURL == "" {
		return "", fmt.Errorf("%w for %s", ErrNoFundamentalURL, fd.Symbol)
	}

	body, err := s.fetcher.FetchText(ctx, s.assetSearchURL+url.QueryEscape(fd.BaseSymbol()))
	if err != nil {
		return "", fmt.Errorf("asset search for %s failed: %w", fd.Symbol, err)
	}

	link, ok := parser.ParseAssetSearch(body)
	if !ok {
		return "", fmt.Errorf("%w for %s", ErrNoFundamentalURL, fd.Symbol)
	}

	s.logger.Debug().Str("symbol", fd.Symbol).Str("url", link).Msg("Resolved fundamental data url")
	return link, nil
}

// applyAuxiliary fetches earnings revision and analyst estimation concurrently.
// The two sources are independent: a failure of one neither cancels the other nor
// touches its result, and leaves the previous value of its own field in place.
func (s *Service) applyAuxiliary(ctx context.Context, fd *models.FundamentalMetrics) {
	var (
		revision    float64
		hasRevision bool
		estimation  parser.AnalystEstimation
		hasEstimate bool
		g           errgroup.Group
	)

	if link, ok := fd.URL(models.URLTypeEarningsRevision); ok {
		g.Go(func() error {
			html, err := s.fetcher.FetchText(ctx, link)
			if err != nil {
				return fmt.Errorf("earnings revision: %w", err)
			}
			v, err := parser.ParseEarningsRevision(html)
			if err != nil {
				return fmt.Errorf("earnings revision: %w", err)
			}
			revision, hasRevision = v, true
			return nil
		})
	}

	if source, ok := analystSource(fd.URLs); ok {
		g.Go(func() error {
			html, err := s.fetcher.FetchText(ctx, source.URL)
			if err != nil {
				return fmt.Errorf("analyst estimation: %w", err)
			}

			parse := parser.ParseDibaAnalystEstimation
			if source.Type == models.URLTypeYahooAnalystEstimation {
				parse = parser.ParseYahooAnalystEstimation
			}
			est, found, err := parse(html)
			if err != nil {
				return fmt.Errorf("analyst estimation: %w", err)
			}
			if !found {
				s.logger.Debug().Str("symbol", fd.Symbol).Str("source", string(source.Type)).Msg("No analyst estimation on page")
				return nil
			}
			estimation, hasEstimate = est, true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("symbol", fd.Symbol).
			Bool("revision_updated", hasRevision).
			Bool("estimation_updated", hasEstimate).
			Msg("Auxiliary figures incomplete")
	}

	if hasRevision {
		fd.EarningsRevision = revision
	}
	if hasEstimate {
		fd.AnalystEstimation = estimation.Value
		if estimation.Count > 0 {
			fd.AnalystEstimationCount = estimation.Count
		}
	}
}

// analystSource returns the last analyst estimation page of the record
func analystSource(urls []models.FundamentalDataURL) (models.FundamentalDataURL, bool) {
	var source models.FundamentalDataURL
	found := false
	for _, u := range urls {
		switch u.Type {
		case models.URLTypeDibaAnalystEstimation, models.URLTypeYahooAnalystEstimation:
			source, found = u, true
		}
	}
	return source, found && strings.TrimSpace(source.URL) != ""
}
