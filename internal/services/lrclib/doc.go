// Package lrclib wraps the LRCLIB lyrics HTTP API: exact lookups via
// /api/get and searches via /api/search, each issued with bounded retries
// and linear backoff.
//
// Responses are decoded into Record, a loose field map whose accessors
// report presence instead of failing, so partially populated or oddly typed
// payloads still yield whatever fields are usable.
package lrclib
