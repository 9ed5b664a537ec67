// Package fetcher downloads web pages as text for the scrapers.
package fetcher

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/httpclient"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
)

// FetchError reports a transport failure or a non-2xx response
type FetchError struct {
	URL        string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Service implements interfaces.HTMLFetcher
type Service struct {
	client *resty.Client
	logger arbor.ILogger
}

var _ interfaces.HTMLFetcher = (*Service)(nil)

// NewService creates a fetcher from the [fetcher] configuration
func NewService(cfg common.FetcherConfig, logger arbor.ILogger) *Service {
	return &Service{
		client: httpclient.NewBrowserClient(cfg.UserAgent, cfg.Timeout),
		logger: logger,
	}
}

// FetchText returns the body of url as text
func (s *Service) FetchText(ctx context.Context, url string) (string, error) {
	s.logger.Debug().Str("url", url).Msg("Fetching page")

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		s.logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode()).
			Msg("Page fetch failed")
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	s.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Int("bytes", len(resp.Body())).
		Str("duration", resp.Time().String()).
		Msg("Page fetched")

	return resp.String(), nil
}
