// Package fpl provides the HTTP client for the Fantasy Premier League API.
//
// All three endpoints the pipeline consumes are plain JSON GETs with no auth
// and no pagination. Rate limiting is handled via a token bucket limiter so
// the per-player history fan-out stays polite to the upstream.
package fpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://fantasy.premierleague.com/api"

// Client is the shared HTTP client for all FPL endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an FPL HTTP client with rate limiting.
// An empty baseURL selects the public API.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute < 1 {
		requestsPerMinute = 60
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		userAgent:  "fplstats/1.0",
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// get performs a rate-limited GET request and returns the raw body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutOrConnError(err) {
			return nil, &TransientError{Endpoint: path, Err: err}
		}
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, &TransientError{
			Endpoint: path,
			Err:      fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// isTimeoutOrConnError reports whether err looks like a retryable transport
// failure rather than a caller bug.
func isTimeoutOrConnError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
