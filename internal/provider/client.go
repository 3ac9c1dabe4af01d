package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 8 * time.Second

	// Rate limiting configuration shared across providers; all three public
	// endpoints tolerate this comfortably.
	maxRequestsPerSecond = 5
	rateLimitBurst       = 2

	// Retry configuration for transient failures.
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
	maxRetries        = 3

	userAgent = "thawtrack/1.0"
)

// Client is the shared HTTP transport for provider and ticker requests.
// It applies a request timeout, a rate limiter and exponential backoff on
// network errors and 5xx responses. 4xx responses are not retried.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a client with the default timeout.
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithTimeout(logger, defaultTimeout)
}

// NewClientWithTimeout creates a client with an explicit request timeout.
func NewClientWithTimeout(logger *slog.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Limit(maxRequestsPerSecond), rateLimitBurst),
		logger:      logger,
	}
}

// Get fetches the URL and returns the response body. The context bounds the
// whole call including retries.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("request failed, will retry", "url", url, "error", err)
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		switch {
		case resp.StatusCode >= 500:
			c.logger.Debug("server error, will retry", "url", url, "status", resp.StatusCode)
			return fmt.Errorf("server error %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("client error %d: %s", resp.StatusCode, string(data)))
		}

		body = data
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = initialRetryDelay
	strategy.MaxInterval = maxRetryDelay
	strategy.MaxElapsedTime = 0 // bounded by the request context instead

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(strategy, maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}
