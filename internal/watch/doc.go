// Package watch discovers candidate video files across the configured
// roots. Three sources feed one emit callback: a periodic full scan, a
// filesystem-event tail, and trigger requests (sentinel files inside any
// root, process signals, or an optional cron schedule). The watcher only
// filters by extension; admission decisions belong to the gate.
package watch
