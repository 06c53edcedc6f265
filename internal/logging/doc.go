// Package logging assembles structured slog loggers and formatting helpers used
// across the now-playing services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the
// listener can tag log lines with correlation IDs. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit records with the same keys as the rest of the system.
package logging
