package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"nowplaying/internal/config"
	"nowplaying/internal/events"
	"nowplaying/internal/listener"
	"nowplaying/internal/logging"
	"nowplaying/internal/lyrics"
	"nowplaying/internal/memory"
	"nowplaying/internal/musicmeta"
	"nowplaying/internal/preflight"
	"nowplaying/internal/signal"
)

// Daemon coordinates the listener and its surfaces and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *memory.Store
	listener *listener.Listener
	hub      *events.Hub
	lyrics   lyrics.Provider
	metadata ArtistProfiler
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	MemoryDBPath  string             `json:"memory_db_path"`
	LockFilePath  string             `json:"lock_file_path"`
	APIAddress    string             `json:"api_address,omitempty"`
	KnownArtists  int                `json:"known_artists"`
	ActiveSignals int                `json:"active_signals"`
	LastEventSeq  uint64             `json:"last_event_seq,omitempty"`
	Current       *signal.Payload    `json:"current,omitempty"`
	Checks        []preflight.Result `json:"checks,omitempty"`
}

// ArtistProfiler answers artist insight lookups.
type ArtistProfiler interface {
	ArtistInsight(ctx context.Context, artist string) (musicmeta.Insight, bool)
}

// Option configures optional daemon dependencies.
type Option func(*Daemon)

// WithMetadata enables artist insight lookups.
func WithMetadata(profiler ArtistProfiler) Option {
	return func(d *Daemon) {
		d.metadata = profiler
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *memory.Store, l *listener.Listener, hub *events.Hub, provider lyrics.Provider, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || l == nil || hub == nil || provider == nil {
		return nil, errors.New("daemon requires config, memory store, listener, event hub, and lyrics provider")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		listener: l,
		hub:      hub,
		lyrics:   provider,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks, and starts the
// HTTP API when one is configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another nowplaying daemon instance is already running")
	}

	for _, result := range preflight.Failed(preflight.RunAll(ctx, d.cfg, false)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "check directory permissions in the [paths] config section"),
			logging.String(logging.FieldImpact, "artist memory or logs may not persist"))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("nowplaying daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("nowplaying daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.listener.Wait()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		MemoryDBPath:  d.store.Path(),
		LockFilePath:  d.lockPath,
		APIAddress:    d.api.address(),
		ActiveSignals: d.listener.ActiveCount(),
		Checks:        preflight.RunAll(ctx, d.cfg, false),
	}
	if count, err := d.store.Count(ctx); err == nil {
		status.KnownArtists = count
	} else {
		d.logger.Debug("count artists failed", logging.Error(err))
	}
	if current, ok := d.listener.Current(); ok {
		status.Current = &current
	}
	if evt, ok := d.hub.Latest(); ok {
		status.LastEventSeq = evt.Sequence
	}
	return status
}

// Current returns the last emitted payload.
func (d *Daemon) Current() (signal.Payload, bool) {
	return d.listener.Current()
}

// PostSignal forwards a posted or updated notification to the listener.
func (d *Daemon) PostSignal(ctx context.Context, sig signal.Signal) (signal.Payload, bool) {
	return d.listener.OnPosted(ctx, sig)
}

// RemoveSignal forwards a notification removal to the listener.
func (d *Daemon) RemoveSignal(key string) (signal.Payload, bool) {
	return d.listener.OnRemoved(key)
}

// Reconnect replaces the active notification set after the host listener
// (re)connects.
func (d *Daemon) Reconnect(ctx context.Context, signals []signal.Signal) (signal.Payload, bool) {
	return d.listener.OnReconnected(ctx, signals)
}

// Events returns the now-playing event hub.
func (d *Daemon) Events() *events.Hub {
	return d.hub
}

// FetchLyrics resolves lyrics for title and artist.
func (d *Daemon) FetchLyrics(ctx context.Context, title, artist string, preferSynced bool) lyrics.Result {
	return d.lyrics.Resolve(ctx, title, artist, preferSynced)
}

// SearchLyrics returns lyrics search candidates for a free-text query.
func (d *Daemon) SearchLyrics(ctx context.Context, query string) []lyrics.Candidate {
	return d.lyrics.SearchCandidates(ctx, query)
}

// Memory returns the learned artist table.
func (d *Daemon) Memory(ctx context.Context) ([]memory.Artist, error) {
	return d.store.LookupAll(ctx)
}

// PreferSynced reports the configured default lyrics preference.
func (d *Daemon) PreferSynced() bool {
	return d.cfg.Lyrics.PreferSynced
}

// ErrMetadataDisabled is returned when artist insight is requested without
// a metadata provider.
var ErrMetadataDisabled = errors.New("artist metadata lookups are disabled")

// ArtistInsight returns the profile of artist, or of the current artist
// when artist is blank. The bool is false when there is nothing to look up.
func (d *Daemon) ArtistInsight(ctx context.Context, artist string) (musicmeta.Insight, bool, error) {
	if d.metadata == nil {
		return musicmeta.Insight{}, false, ErrMetadataDisabled
	}
	if strings.TrimSpace(artist) == "" {
		current, ok := d.listener.Current()
		if !ok || current.Artist == d.cfg.Extractor.UnknownArtist {
			return musicmeta.Insight{}, false, nil
		}
		artist = current.Artist
	}
	insight, ok := d.metadata.ArtistInsight(ctx, artist)
	return insight, ok, nil
}
