// Package config loads, normalizes, and validates subweave configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and ASR_API_KEY. The Config type centralizes every knob the
// daemon and CLI need, from watched roots and queue concurrency to external
// service credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
