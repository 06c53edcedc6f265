package lrclib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://lrclib.net"
	defaultHTTPTimeout    = 10 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	maxErrorBody          = 512
)

// ErrNotFound is returned when the service has no entry for a lookup.
var ErrNotFound = errors.New("lrclib: not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lrclib request: http %d: %s", e.StatusCode, e.Body)
}

// Config captures the runtime settings for the lyrics service.
type Config struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Client issues GET requests against the lyrics API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the attempt bound.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a Client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay < 0 {
		delay = defaultRetryBaseDelay
	}
	client := &Client{
		baseURL:          base,
		userAgent:        strings.TrimSpace(cfg.UserAgent),
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: attempts,
		retryBaseDelay:   delay,
		sleeper:          time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.sleeper == nil {
		client.sleeper = time.Sleep
	}
	return client
}

// Get performs an exact lookup by track and artist name.
func (c *Client) Get(ctx context.Context, track, artist string) (Record, error) {
	params := url.Values{}
	params.Set("track_name", strings.TrimSpace(track))
	params.Set("artist_name", strings.TrimSpace(artist))
	records, err := c.fetch(ctx, "/api/get", params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// Search finds entries matching a track and artist name.
func (c *Client) Search(ctx context.Context, track, artist string) ([]Record, error) {
	params := url.Values{}
	params.Set("track_name", strings.TrimSpace(track))
	params.Set("artist_name", strings.TrimSpace(artist))
	return c.fetch(ctx, "/api/search", params)
}

// Query runs a free-text search.
func (c *Client) Query(ctx context.Context, q string) ([]Record, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(q))
	return c.fetch(ctx, "/api/search", params)
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]Record, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("lrclib %s: %w", path, err)
	}
	return records, nil
}

// getWithRetry issues GET requests until one succeeds, a non-retryable
// error occurs, or the attempt bound is reached. Delays grow linearly.
func (c *Client) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.getOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(ctx, err) || attempt == attempts {
			break
		}
		if delay := c.retryBaseDelay * time.Duration(attempt); delay > 0 {
			c.sleeper(delay)
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("lrclib request: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lrclib request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lrclib request: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

func retryable(ctx context.Context, err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
