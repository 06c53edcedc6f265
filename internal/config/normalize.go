package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nowplaying/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMemory(); err != nil {
		return err
	}
	c.normalizeExtractor()
	c.normalizeLyrics()
	c.normalizeMetadata()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.DataDir, defaultSocketFile)
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("NOWPLAYING_API_TOKEN"); ok {
			c.Paths.APIToken = value
		}
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeMemory() error {
	if strings.TrimSpace(c.Memory.Path) == "" {
		c.Memory.Path = filepath.Join(c.Paths.DataDir, defaultMemoryFile)
	}
	var err error
	if c.Memory.Path, err = expandPath(c.Memory.Path); err != nil {
		return fmt.Errorf("memory.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtractor() {
	c.Extractor.NativePackages = uniquePackages(c.Extractor.NativePackages)
	c.Extractor.IgnoredPackages = uniquePackages(c.Extractor.IgnoredPackages)
	c.Extractor.UnknownArtist = textutil.Normalize(c.Extractor.UnknownArtist)
}

// uniquePackages trims entries and drops blanks and repeats, keeping order.
func uniquePackages(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	packages := make([]string, 0, len(in))
	for _, pkg := range in {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		if _, ok := seen[pkg]; ok {
			continue
		}
		seen[pkg] = struct{}{}
		packages = append(packages, pkg)
	}
	return packages
}

func (c *Config) normalizeLyrics() {
	if value, ok := os.LookupEnv("NOWPLAYING_LYRICS_URL"); ok && strings.TrimSpace(value) != "" {
		c.Lyrics.BaseURL = value
	}
	c.Lyrics.BaseURL = strings.TrimRight(strings.TrimSpace(c.Lyrics.BaseURL), "/")
	if c.Lyrics.BaseURL == "" {
		c.Lyrics.BaseURL = defaultLyricsBaseURL
	}
	c.Lyrics.UserAgent = strings.TrimSpace(c.Lyrics.UserAgent)
	if c.Lyrics.UserAgent == "" {
		c.Lyrics.UserAgent = defaultLyricsUserAgent
	}
	if c.Lyrics.TimeoutSeconds <= 0 {
		c.Lyrics.TimeoutSeconds = defaultLyricsTimeout
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.ITunesURL = strings.TrimRight(strings.TrimSpace(c.Metadata.ITunesURL), "/")
	if c.Metadata.ITunesURL == "" {
		c.Metadata.ITunesURL = defaultITunesURL
	}
	c.Metadata.WikipediaURL = strings.TrimRight(strings.TrimSpace(c.Metadata.WikipediaURL), "/")
	if c.Metadata.WikipediaURL == "" {
		c.Metadata.WikipediaURL = defaultWikipediaURL
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
