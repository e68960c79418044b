package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/elecmate/materials-compare/internal/domain"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultRatePerSec  = 10
	defaultBurst       = 20
	defaultMaxAttempts = 1
	defaultBackoffBase = 500 * time.Millisecond

	// maxErrorBodyBytes bounds how much of an error response we keep for logs
	maxErrorBodyBytes = 1 << 10
	maxBodyBytes      = 4 << 20

	searchPath = "/v1/products/search"
)

// Config holds settings for the catalog search API client
type Config struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
	// MaxAttempts bounds tries per search; 5xx, 429 and transport errors are retried
	MaxAttempts int
}

// Client searches the product catalog API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	logger      zerolog.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	ratePerSec := cfg.RatePerSecond
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		maxAttempts: attempts,
		backoffBase: defaultBackoffBase,
		logger:      logger.With().Str("component", "catalog_client").Logger(),
	}
}

// SearchCatalog returns up to limit products matching term.
// A 404 or an empty product list is an empty result, not an error.
func (c *Client) SearchCatalog(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("%w: catalog base url and api key are required", domain.ErrCollaboratorMisconfigured)
	}

	params := url.Values{}
	params.Add("q", term)
	params.Add("limit", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.exponentialBackoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		products, retry, err := c.searchOnce(ctx, reqURL)
		if err == nil {
			c.logger.Debug().Str("term", term).Int("found", len(products)).Msg("catalog search")
			return products, nil
		}
		if !retry || ctx.Err() != nil {
			return nil, err
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Str("term", term).Msg("catalog search attempt failed")
		lastErr = err
	}

	return nil, lastErr
}

// searchOnce performs a single request and reports whether a failure is worth retrying
func (c *Client) searchOnce(ctx context.Context, reqURL string) ([]domain.Product, bool, error) {
	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return []domain.Product{}, false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: catalog rejected credentials (status %d)", domain.ErrCollaboratorMisconfigured, resp.StatusCode)
	default:
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return nil, retry, fmt.Errorf("%w: status %d, body: %s", domain.ErrCatalogFailure, resp.StatusCode, string(body))
	}

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading response: %v", domain.ErrCatalogFailure, err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrCatalogFailure, err)
	}

	products, skipped := mapProducts(searchResp.Products)
	if skipped > 0 {
		c.logger.Warn().Int("skipped", skipped).Msg("dropped malformed catalog entries")
	}
	return products, false, nil
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "materials-compare/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the wait before retry n (1-based): base, 2*base, 4*base...
func (c *Client) exponentialBackoff(n int) time.Duration {
	return c.backoffBase * time.Duration(1<<(n-1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
