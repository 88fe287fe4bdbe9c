package utils

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"price-tracker/internal/types"
)

// HTTPClient issues search page requests with a randomized politeness delay
type HTTPClient struct {
	client *http.Client
	config *types.Config
	logger types.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// Get waits for the politeness delay and performs a single GET request.
// Network errors, timeouts and non-2xx statuses are returned as errors.
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	if err := Pause(ctx, h.config); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	SetBrowserHeaders(req, h.config.UserAgent)

	h.logger.Debugf("Making request to %s", url)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
	return body, nil
}

// SetBrowserHeaders applies the fixed browser-like header set
func SetBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// RandomDelay picks a uniformly random duration in [MinDelay, MaxDelay]
func RandomDelay(config *types.Config) time.Duration {
	lo, hi := config.MinDelay, config.MaxDelay
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo+1)))
}

// Pause sleeps for a random politeness delay or until ctx is done
func Pause(ctx context.Context, config *types.Config) error {
	d := RandomDelay(config)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases idle connections
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}
