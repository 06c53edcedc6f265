package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nowplaying/internal/config"
	"nowplaying/internal/daemon"
	"nowplaying/internal/events"
	"nowplaying/internal/ipc"
	"nowplaying/internal/logging"
	"nowplaying/internal/memory"
)

const eventHubCapacity = 256

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the nowplaying daemon runtime loop and blocks until the
// process receives SIGINT or SIGTERM or cmdCtx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("nowplayingd-%s.log", runID))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update nowplayingd.log link: %v\n", err)
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := memory.Open(cfg.Memory.Path, logger)
	if err != nil {
		logger.Error("open memory store", logging.Error(err))
		return err
	}

	hub := events.NewHub(eventHubCapacity)
	metadata := BuildMetadataProvider(cfg, logger)
	l := BuildListener(cfg, store, hub, logger, ArtworkOption(cfg, metadata))
	d, err := daemon.New(cfg, store, l, hub, BuildLyricsProvider(cfg, logger), logger, DaemonOptions(metadata)...)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the lock file and the api_bind address"),
			logging.String(logging.FieldImpact, "the HTTP API is unavailable"))
	}

	logConfigSnapshot(logger, cfg)
	<-signalCtx.Done()
	logger.Info("nowplaying daemon shutting down")
	return nil
}
