// Package openlibrary is a rate-limited client for the Open Library
// subjects API, used to bulk-import catalog records by genre.
package openlibrary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://openlibrary.org"
	defaultTimeout = 15 * time.Second

	// Open Library asks clients to stay under ~1 request per second.
	defaultRPS   = 1.0
	defaultBurst = 3
)

// Client is a rate-limited Open Library API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	logger  *slog.Logger
}

// New creates a new Open Library client.
func New(logger *slog.Logger) *Client {
	return NewWithBaseURL(defaultBaseURL, logger)
}

// NewWithBaseURL creates a client against a specific endpoint.
// Used for self-hosted mirrors and tests.
func NewWithBaseURL(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		baseURL: baseURL,
		logger:  logger,
	}
}

// doRequest executes a GET request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShelfKeep/1.0")

	if c.logger != nil {
		c.logger.Debug("open library request", "path", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
