// Package logging assembles structured slog loggers and formatting helpers
// used across subweave services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (including size rotation for file outputs), and exposes
// context-aware helpers so pipeline code can automatically tag log lines with
// job paths, stages, workers, and run identifiers. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the system.
package logging
