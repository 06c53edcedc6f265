package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMemory(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMemory() error {
	if c.Memory.InsertScore <= 0 {
		return errors.New("memory.insert_score must be positive")
	}
	if c.Memory.IncrementScore <= 0 {
		return errors.New("memory.increment_score must be positive")
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if c.Extractor.UnknownArtist == "" {
		return errors.New("extractor.unknown_artist must be set")
	}
	return nil
}

func (c *Config) validateLyrics() error {
	if !absoluteURL(c.Lyrics.BaseURL) {
		return fmt.Errorf("lyrics.base_url %q must be an absolute URL", c.Lyrics.BaseURL)
	}
	if c.Lyrics.RetryAttempts < 1 {
		return errors.New("lyrics.retry_attempts must be at least 1")
	}
	if c.Lyrics.RetryDelayMS < 0 {
		return errors.New("lyrics.retry_delay_ms must not be negative")
	}
	if c.Lyrics.SearchLimit < 1 {
		return errors.New("lyrics.search_limit must be at least 1")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if !c.Metadata.Enabled {
		return nil
	}
	for name, value := range map[string]string{
		"metadata.itunes_url":    c.Metadata.ITunesURL,
		"metadata.wikipedia_url": c.Metadata.WikipediaURL,
	} {
		if !absoluteURL(value) {
			return fmt.Errorf("%s %q must be an absolute URL", name, value)
		}
	}
	return nil
}

func absoluteURL(value string) bool {
	parsed, err := url.Parse(value)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
