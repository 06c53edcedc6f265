// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal signal, lyrics, and memory models into
// transport-friendly DTOs that the overlay UI and the CLI can render without
// coupling to internal types.
//
// # Key Types
//
// Payload: the now-playing tuple as shown to clients.
//
// Signal: a raw notification posted by the OS integration shim.
//
// LyricsResponse/SearchResponse: lyrics resolution and candidate lists.
//
// DaemonStatus: aggregated runtime information including preflight checks.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (signal.SourceType, lyrics.Status) are exposed as lowercase strings.
// Timestamps use RFC3339 with milliseconds.
package api
