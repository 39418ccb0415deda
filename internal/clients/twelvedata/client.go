// Package twelvedata provides the daily quote source: a client for the
// Twelve Data quote API. Daily quotes carry the authoritative changePercent
// (move since prior close) and feed the coarse refresh cycle.
package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

const (
	DefaultBaseURL   = "https://api.twelvedata.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Twelve Data returns most numeric fields as strings.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements interfaces.QuoteSource against Twelve Data.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Twelve Data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// quoteResponse is the vendor quote payload. Error responses reuse the same
// shape with status "error".
type quoteResponse struct {
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	Close         flexFloat64 `json:"close"`
	PercentChange flexFloat64 `json:"percent_change"`
	Status        string      `json:"status,omitempty"`
	Code          int         `json:"code,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// get performs a rate-limited GET request and decodes the body into result.
// Network errors, timeouts, and non-200 responses are all normalized to
// models.ErrUpstreamUnavailable per the adapter contract.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", models.ErrUpstreamUnavailable, err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Twelve Data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", models.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode: %v", models.ErrUpstreamUnavailable, err)
	}

	return nil
}

// toQuote validates a vendor payload and converts it to the normalized shape.
func (r *quoteResponse) toQuote(symbol string) (*models.Quote, error) {
	if r.Status == "error" {
		// The vendor reports unknown symbols as code 400 with an error status.
		if r.Code == 400 || r.Code == 404 {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, r.Message)
	}
	return &models.Quote{
		Symbol:    models.NormalizeSymbol(symbol),
		Price:     float64(r.Close),
		ChangePct: float64(r.PercentChange),
	}, nil
}

// FetchQuote retrieves a single normalized daily quote.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = models.NormalizeSymbol(symbol)

	params := url.Values{}
	params.Set("symbol", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return nil, err
	}

	return resp.toQuote(symbol)
}

// FetchAll retrieves daily quotes for many symbols in a single batched call.
// Symbols the vendor could not price are absent from the result; only a
// wholesale request failure returns an error.
func (c *Client) FetchAll(ctx context.Context, symbols []string) ([]*models.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n := models.NormalizeSymbol(s); n != "" {
			normalized = append(normalized, n)
		}
	}

	// Single-symbol batch responses are not keyed by symbol; route through
	// the single fetch to keep decoding uniform.
	if len(normalized) == 1 {
		quote, err := c.FetchQuote(ctx, normalized[0])
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []*models.Quote{quote}, nil
	}

	params := url.Values{}
	params.Set("symbol", strings.Join(normalized, ","))

	var batch map[string]quoteResponse
	if err := c.get(ctx, "/quote", params, &batch); err != nil {
		return nil, err
	}

	quotes := make([]*models.Quote, 0, len(batch))
	for symbol, resp := range batch {
		quote, err := resp.toQuote(symbol)
		if err != nil {
			c.logger.Debug().Err(err).Str("symbol", symbol).Msg("Bulk quote skipped")
			continue
		}
		quotes = append(quotes, quote)
	}

	c.logger.Debug().Int("requested", len(normalized)).Int("returned", len(quotes)).Msg("Twelve Data bulk quotes")

	return quotes, nil
}

// Ensure Client implements QuoteSource
var _ interfaces.QuoteSource = (*Client)(nil)
