package testsupport

import (
	"path/filepath"
	"testing"

	"nowplaying/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "nowplaying.sock")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Memory.Path = filepath.Join(base, "data", "memory.db")
	cfg.Lyrics.RetryDelayMS = 0
	cfg.Metadata.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithLyricsURL points the lyrics client at a test server.
func WithLyricsURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Lyrics.BaseURL = url
	}
}

// WithMetadataURLs enables metadata lookups against test servers.
func WithMetadataURLs(itunesURL, wikipediaURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Metadata.Enabled = true
		cfg.Metadata.ITunesURL = itunesURL
		cfg.Metadata.WikipediaURL = wikipediaURL
	}
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}
