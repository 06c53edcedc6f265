package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout    = 10 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	maxErrorBody          = 512
)

// ErrNotFound is returned when a service answers 404.
var ErrNotFound = errors.New("not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request: http %d: %s", e.Service, e.StatusCode, e.Body)
}

// GetterConfig captures timeout and retry settings for a Getter.
type GetterConfig struct {
	Service        string
	UserAgent      string
	TimeoutSeconds int
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Getter performs retrying GET requests for one service.
type Getter struct {
	service    string
	userAgent  string
	httpClient *http.Client
	attempts   int
	baseDelay  time.Duration
	sleeper    func(time.Duration)
}

// GetterOption customizes a Getter.
type GetterOption func(*Getter)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) GetterOption {
	return func(g *Getter) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) GetterOption {
	return func(g *Getter) {
		if sleeper != nil {
			g.sleeper = sleeper
		}
	}
}

// NewGetter constructs a Getter.
func NewGetter(cfg GetterConfig, opts ...GetterOption) *Getter {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay < 0 {
		delay = defaultRetryBaseDelay
	}
	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = "http"
	}
	g := &Getter{
		service:    service,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{Timeout: timeout},
		attempts:   attempts,
		baseDelay:  delay,
		sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Get fetches endpoint, retrying transient failures. headers are added to
// every attempt.
func (g *Getter) Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		body, err := g.getOnce(ctx, endpoint, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !Retryable(ctx, err) || attempt == g.attempts {
			break
		}
		if delay := g.baseDelay * time.Duration(attempt); delay > 0 {
			g.sleeper(delay)
		}
	}
	return nil, lastErr
}

func (g *Getter) getOnce(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request: new request: %w", g.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", g.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s request: read body: %w", g.service, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s request: %w", g.service, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Service: g.service, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// Retryable reports whether err is worth another attempt.
func Retryable(ctx context.Context, err error) bool {
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
