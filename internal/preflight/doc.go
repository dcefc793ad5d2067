// Package preflight provides readiness checks for the external services and
// filesystem paths the daemon depends on.
//
// The daemon runs RunAll at startup and logs every failure; the CLI status
// command reuses the individual check functions to display service health.
// Each check is gated by its config toggle, so disabled features are skipped.
package preflight
