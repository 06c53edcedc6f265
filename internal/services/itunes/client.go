package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nowplaying/internal/services"
)

const defaultBaseURL = "https://itunes.apple.com"

// Result is one entry of a search response. Song and artist searches share
// the shape; fields a result type does not carry stay empty.
type Result struct {
	WrapperType      string `json:"wrapperType"`
	ArtistName       string `json:"artistName"`
	TrackName        string `json:"trackName"`
	CollectionName   string `json:"collectionName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	Country          string `json:"country"`
	ReleaseDate      string `json:"releaseDate"`
	ArtworkURL100    string `json:"artworkUrl100"`
}

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Config captures the runtime settings for the search client.
type Config struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Client issues search requests.
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
			Service:        "itunes",
			UserAgent:      cfg.UserAgent,
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
		}, opts...),
	}
}

// SearchSongs finds songs matching a free-text term.
func (c *Client) SearchSongs(ctx context.Context, term string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(term))
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limitOrOne(limit)))
	return c.search(ctx, params)
}

// SearchArtistSongs finds songs whose artist matches term.
func (c *Client) SearchArtistSongs(ctx context.Context, artist string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(artist))
	params.Set("entity", "song")
	params.Set("attribute", "artistTerm")
	params.Set("limit", strconv.Itoa(limitOrOne(limit)))
	return c.search(ctx, params)
}

// SearchArtists finds artist profiles matching term.
func (c *Client) SearchArtists(ctx context.Context, artist string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(artist))
	params.Set("entity", "musicArtist")
	params.Set("limit", strconv.Itoa(limitOrOne(limit)))
	return c.search(ctx, params)
}

func (c *Client) search(ctx context.Context, params url.Values) ([]Result, error) {
	body, err := c.getter.Get(ctx, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("itunes search: decode: %w", err)
	}
	return resp.Results, nil
}

// LargeArtwork rewrites a 100px artwork URL to its 600px rendition.
func LargeArtwork(artworkURL string) string {
	return strings.Replace(strings.TrimSpace(artworkURL), "100x100bb", "600x600bb", 1)
}

func limitOrOne(limit int) int {
	if limit < 1 {
		return 1
	}
	return limit
}
