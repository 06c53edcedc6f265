// Package daemon coordinates the long-running nowplaying process.
//
// It wires configuration, the artist memory store, the notification listener,
// the event hub, and the lyrics provider into a single lifecycle with
// flock-based locking to prevent multiple instances. The optional HTTP API
// exposes the current payload, the event stream, lyrics lookups, and signal
// ingestion for the OS integration shim.
//
// Keep orchestration logic here: parsing and arbitration live in their own
// packages while the daemon focuses on startup, shutdown, and routing.
package daemon
