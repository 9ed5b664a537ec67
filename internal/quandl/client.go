// Package quandl provides a client for Quandl / Nasdaq Data Link time-series datasets.
package quandl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Quandl v3 API.
	DefaultBaseURL = "https://www.quandl.com/api/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	dateLayout = "2006-01-02"
)

// Client is a Quandl API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates a new Quandl API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Point is one dated value of a dataset column.
type Point struct {
	Date  time.Time
	Value float64
}

// Dataset is a tabular dataset response.
type Dataset struct {
	Code    string
	Columns []string
	data    gjson.Result
}

// Series returns the dated values of one column. Rows with an unparseable date or
// a null value are skipped.
func (d *Dataset) Series(column string) ([]Point, error) {
	idx := -1
	for i, c := range d.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("dataset %s has no column %q", d.Code, column)
	}

	var points []Point
	d.data.ForEach(func(_, row gjson.Result) bool {
		cells := row.Array()
		if len(cells) <= idx {
			return true
		}
		date, err := time.Parse(dateLayout, cells[0].String())
		if err != nil || cells[idx].Type != gjson.Number {
			return true
		}
		points = append(points, Point{Date: date, Value: cells[idx].Float()})
		return true
	})

	return points, nil
}

// GetDataset retrieves the rows of a dataset (e.g. "FSE/SAP_X") between from and to.
func (c *Client) GetDataset(ctx context.Context, code string, from, to time.Time) (*Dataset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("quandl rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if !from.IsZero() {
		params.Set("start_date", from.Format(dateLayout))
	}
	if !to.IsZero() {
		params.Set("end_date", to.Format(dateLayout))
	}

	endpoint := "/datasets/" + code + ".json"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("code", code).
			Str("start_date", params.Get("start_date")).
			Str("end_date", params.Get("end_date")).
			Msg("Quandl API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       gjson.GetBytes(body, "quandl_error.code").String(),
			Message:    gjson.GetBytes(body, "quandl_error.message").String(),
			Dataset:    code,
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response for dataset %s", code)
	}

	columns := []string{}
	for _, col := range gjson.GetBytes(body, "dataset.column_names").Array() {
		columns = append(columns, col.String())
	}

	return &Dataset{
		Code:    code,
		Columns: columns,
		data:    gjson.GetBytes(body, "dataset.data"),
	}, nil
}

// APIError represents an error from the Quandl API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Dataset    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Quandl API error: %s %s (status: %d, dataset: %s)", e.Code, e.Message, e.StatusCode, e.Dataset)
}
