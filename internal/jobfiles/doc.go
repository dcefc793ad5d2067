// Package jobfiles owns the on-disk state kept beside each video's subtitle
// outputs: lock and done markers, failure records, operator override files,
// and per-run audit logs. All names derive from the video basename so that
// per-file state stays partitioned; only the worker holding the lock for a
// basename writes these files, the watcher just reads them.
package jobfiles
