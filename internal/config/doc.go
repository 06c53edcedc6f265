// Package config loads, normalizes, and validates now-playing configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NOWPLAYING_API_TOKEN, optionally sourced from a .env file. The Config type
// centralizes every knob the daemon and CLI need so the memory database,
// lyrics service, and extractor allow-lists are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
