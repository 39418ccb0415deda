// Package finnhub provides the realtime quote source: a client for the
// Finnhub quote API. Realtime quotes are authoritative for price only and
// feed the fine refresh cycle; their percent-change field is ignored by the
// merge policy upstream.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements interfaces.QuoteSource against Finnhub.
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

// NewClient creates a new Finnhub client
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

// quoteResponse is the vendor quote payload: c = current price, dp = percent
// change, pc = previous close. Unknown symbols come back as all zeros.
type quoteResponse struct {
	Current       float64 `json:"c"`
	ChangePct     float64 `json:"dp"`
	PreviousClose float64 `json:"pc"`
}

// FetchQuote retrieves a single normalized realtime quote.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = models.NormalizeSymbol(symbol)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", models.ErrUpstreamUnavailable, err)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s/quote?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("symbol", symbol).Msg("Finnhub quote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", models.ErrUpstreamUnavailable, err)
	}

	// The vendor signals an unknown symbol with an all-zero payload.
	if payload.Current == 0 && payload.PreviousClose == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, symbol)
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     payload.Current,
		ChangePct: payload.ChangePct,
	}, nil
}

// FetchAll retrieves realtime quotes symbol by symbol; the vendor has no bulk
// endpoint. Best-effort: failed symbols are absent from the result.
func (c *Client) FetchAll(ctx context.Context, symbols []string) ([]*models.Quote, error) {
	quotes := make([]*models.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := c.FetchQuote(ctx, symbol)
		if err != nil {
			c.logger.Debug().Err(err).Str("symbol", symbol).Msg("Realtime quote skipped")
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Ensure Client implements QuoteSource
var _ interfaces.QuoteSource = (*Client)(nil)
