package daemonrun

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"nowplaying/internal/config"
	"nowplaying/internal/daemon"
	"nowplaying/internal/events"
	"nowplaying/internal/identity"
	"nowplaying/internal/listener"
	"nowplaying/internal/logging"
	"nowplaying/internal/lyrics"
	"nowplaying/internal/musicmeta"
	"nowplaying/internal/services/itunes"
	"nowplaying/internal/services/lrclib"
	"nowplaying/internal/services/wikipedia"
	"nowplaying/internal/signal"
)

// BuildSplitter configures the title/artist splitter over the memory store.
func BuildSplitter(cfg *config.Config, mem identity.Memory, logger *slog.Logger) *identity.Splitter {
	return identity.NewSplitter(mem,
		identity.WithLogger(logger),
		identity.WithScores(cfg.Memory.InsertScore, cfg.Memory.IncrementScore),
		identity.WithUnknownArtist(cfg.Extractor.UnknownArtist))
}

// BuildListener wires extraction, arbitration, and the event hub.
func BuildListener(cfg *config.Config, mem identity.Memory, hub *events.Hub, logger *slog.Logger, opts ...listener.Option) *listener.Listener {
	extractor := signal.NewExtractor(cfg.Extractor, BuildSplitter(cfg, mem, logger), logger)
	return listener.New(extractor, hub, logger, opts...)
}

// BuildMetadataProvider configures artwork and artist insight lookups. It
// returns nil when metadata is disabled.
func BuildMetadataProvider(cfg *config.Config, logger *slog.Logger) *musicmeta.Provider {
	if !cfg.Metadata.Enabled {
		return nil
	}
	retryDelay := time.Duration(cfg.Lyrics.RetryDelayMS) * time.Millisecond
	catalog := itunes.NewClient(itunes.Config{
		BaseURL:        cfg.Metadata.ITunesURL,
		UserAgent:      cfg.Lyrics.UserAgent,
		TimeoutSeconds: cfg.Metadata.TimeoutSeconds,
		RetryAttempts:  cfg.Lyrics.RetryAttempts,
		RetryDelay:     retryDelay,
	})
	encyclopedia := wikipedia.NewClient(wikipedia.Config{
		BaseURL:        cfg.Metadata.WikipediaURL,
		UserAgent:      cfg.Lyrics.UserAgent,
		TimeoutSeconds: cfg.Metadata.TimeoutSeconds,
		RetryAttempts:  cfg.Lyrics.RetryAttempts,
		RetryDelay:     retryDelay,
	})
	return musicmeta.New(catalog, encyclopedia, logger)
}

// ArtworkOption enables background artwork lookups when provider is set and
// fill_artwork is on. It returns nil otherwise.
func ArtworkOption(cfg *config.Config, provider *musicmeta.Provider) listener.Option {
	if provider == nil || !cfg.Metadata.FillArtwork {
		return nil
	}
	return listener.WithArtwork(provider)
}

// DaemonOptions collects the optional daemon dependencies.
func DaemonOptions(provider *musicmeta.Provider) []daemon.Option {
	if provider == nil {
		return nil
	}
	return []daemon.Option{daemon.WithMetadata(provider)}
}

// BuildLyricsProvider configures the lyrics cascade over the LRCLIB client.
func BuildLyricsProvider(cfg *config.Config, logger *slog.Logger) *lyrics.Cascade {
	client := lrclib.NewClient(lrclib.Config{
		BaseURL:        cfg.Lyrics.BaseURL,
		UserAgent:      cfg.Lyrics.UserAgent,
		TimeoutSeconds: cfg.Lyrics.TimeoutSeconds,
		RetryAttempts:  cfg.Lyrics.RetryAttempts,
		RetryDelay:     time.Duration(cfg.Lyrics.RetryDelayMS) * time.Millisecond,
	})
	return lyrics.NewCascade(client,
		lyrics.WithLogger(logger),
		lyrics.WithSearchLimit(cfg.Lyrics.SearchLimit))
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("config snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("memory_path", cfg.Memory.Path),
		logging.String("socket_path", cfg.Paths.SocketPath),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_present", cfg.Paths.APIToken != ""),
		logging.Int("native_packages", len(cfg.Extractor.NativePackages)),
		logging.Bool("allow_unclassified", cfg.Extractor.AllowUnclassified),
		logging.String("lyrics_base_url", cfg.Lyrics.BaseURL),
		logging.Bool("prefer_synced", cfg.Lyrics.PreferSynced),
		logging.Bool("metadata_enabled", cfg.Metadata.Enabled),
		logging.Bool("fill_artwork", cfg.Metadata.Enabled && cfg.Metadata.FillArtwork),
		logging.Int("ignored_packages", len(cfg.Extractor.IgnoredPackages)),
	)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "nowplayingd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
