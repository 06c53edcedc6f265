package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nowplaying/internal/services"
)

const defaultBaseURL = "https://es.wikipedia.org"

// Config captures the runtime settings for the Wikipedia client.
type Config struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Client reads article titles and summaries.
type Client struct {
	baseURL string
	getter  *services.Getter
}

// NewClient constructs a Client.
func NewClient(cfg Config, opts ...services.GetterOption) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		getter: services.NewGetter(services.GetterConfig{
			Service:        "wikipedia",
			UserAgent:      cfg.UserAgent,
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
		}, opts...),
	}
}

// FindTitle returns the best matching article title for term.
func (c *Client) FindTitle(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", strings.TrimSpace(term))
	params.Set("limit", "1")
	params.Set("namespace", "0")
	params.Set("format", "json")
	body, err := c.getter.Get(ctx, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	// OpenSearch answers [query, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("wikipedia opensearch: decode: %w", err)
	}
	if len(raw) < 2 {
		return "", services.ErrNotFound
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return "", fmt.Errorf("wikipedia opensearch: decode titles: %w", err)
	}
	if len(titles) == 0 || strings.TrimSpace(titles[0]) == "" {
		return "", services.ErrNotFound
	}
	return strings.TrimSpace(titles[0]), nil
}

// Summary returns the plain-text extract of the article titled title.
func (c *Client) Summary(ctx context.Context, title string) (string, error) {
	slug := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
	body, err := c.getter.Get(ctx, c.baseURL+"/api/rest_v1/page/summary/"+slug, nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("wikipedia summary: decode: %w", err)
	}
	return strings.TrimSpace(resp.Extract), nil
}

// ArtistSummary looks up term and returns its article summary.
func (c *Client) ArtistSummary(ctx context.Context, term string) (string, error) {
	title, err := c.FindTitle(ctx, term)
	if err != nil {
		return "", err
	}
	return c.Summary(ctx, title)
}
