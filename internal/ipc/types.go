package ipc

import "subweave/internal/workflow"

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse carries the daemon's identity.
type PingResponse struct {
	PID     int    `json:"pid"`
	Version string `json:"version"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse combines process identity with the workflow snapshot.
type StatusResponse struct {
	PID      int               `json:"pid"`
	Version  string            `json:"version"`
	LogPath  string            `json:"log_path,omitempty"`
	Workflow workflow.Snapshot `json:"workflow"`
}

// ScanRequest asks the watcher for an immediate rescan.
type ScanRequest struct{}

// ScanResponse acknowledges the rescan request.
type ScanResponse struct {
	Triggered bool `json:"triggered"`
}

// QueueListRequest fetches the queued and active paths.
type QueueListRequest struct{}

// QueueListResponse lists queued entries in dispatch order plus in-flight
// jobs.
type QueueListResponse struct {
	Queued []workflow.QueuedEntry `json:"queued"`
	Active []workflow.ActiveJob   `json:"active"`
}

// QueueClearRequest drops every queued (not yet running) entry.
type QueueClearRequest struct{}

// QueueClearResponse reports how many entries were dropped.
type QueueClearResponse struct {
	Removed int `json:"removed"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges the shutdown request.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// LogTailRequest reads a window of the daemon log.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int64 `json:"wait_millis"`
}

// LogTailResponse carries log lines and the next read offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest sends a webhook test message.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the delivery outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
