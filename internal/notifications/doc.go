// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation posts to an ntfy-style webhook using the URL
// configured in config.toml and gracefully degrades to a no-op when no
// webhook is set. Event toggles in the notifications config section pick
// which milestones actually send.
//
// All pipeline code depends only on the Service interface, so alternative
// transports slot in without touching callers.
package notifications
