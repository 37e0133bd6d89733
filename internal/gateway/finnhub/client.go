// Package finnhub is the HTTP client for the Finnhub market data API. The
// service is rate-limited per API key, so every request passes through a
// client-side limiter sized to the free tier.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/finwatch/fintrack/internal/quote"
)

const (
	defaultBaseURL      = "https://finnhub.io/api/v1"
	requestTimeout      = 10 * time.Second
	rateLimitRetryAfter = 60 * time.Second
)

// Client represents a Finnhub API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Finnhub client. The free tier allows 60 calls per
// minute with short bursts.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 30),
	}
}

// WithBaseURL overrides the API base URL. An empty value keeps the default.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// quoteResponse is the /quote wire format: c = current price, d = change,
// dp = change percent
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
}

// Quote fetches the current quote for a symbol. A zero current price means
// Finnhub has no data for the symbol and is treated as a failure.
func (c *Client) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return quote.Quote{}, err
	}

	if resp.Current == 0 {
		return quote.Quote{}, fmt.Errorf("no quote data for symbol %s", symbol)
	}

	return quote.Quote{
		Price:         decimal.NewFromFloat(resp.Current),
		Change:        decimal.NewFromFloat(resp.Change),
		ChangePercent: decimal.NewFromFloat(resp.ChangePercent),
	}, nil
}

// searchResponse is the /search wire format
type searchResponse struct {
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
	} `json:"result"`
}

// Search finds symbols matching a free-text query
func (c *Client) Search(ctx context.Context, query string) ([]quote.Match, error) {
	params := url.Values{}
	params.Set("q", query)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	matches := make([]quote.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, quote.Match{Symbol: r.Symbol, Description: r.Description})
	}

	return matches, nil
}

// get waits on the rate limiter, then builds and executes one GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: rateLimitRetryAfter,
			Message:    "Finnhub API rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// RateLimitError represents a rate limit error from the Finnhub API
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	_, ok := err.(*RateLimitError)
	return ok
}
