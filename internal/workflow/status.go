package workflow

import (
	"context"
	"time"
)

// ActiveJob describes one path currently inside the pipeline.
type ActiveJob struct {
	Path      string    `json:"path"`
	Priority  int       `json:"priority"`
	StartedAt time.Time `json:"started_at"`
}

// QueuedEntry is the wire shape of one queued path.
type QueuedEntry struct {
	Path     string `json:"path"`
	Priority int    `json:"priority"`
}

// HealthReport is the wire shape of one readiness probe result.
type HealthReport struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// Snapshot is a point-in-time view of the daemon, serialized over IPC for
// the status commands.
type Snapshot struct {
	Running       bool           `json:"running"`
	StartedAt     time.Time      `json:"started_at,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	QueueDepth    int            `json:"queue_depth"`
	Queued        []QueuedEntry  `json:"queued,omitempty"`
	Active        []ActiveJob    `json:"active,omitempty"`
	Processed     int            `json:"processed"`
	Skipped       int            `json:"skipped"`
	Failed        int            `json:"failed"`
	LastError     string         `json:"last_error,omitempty"`
	Health        []HealthReport `json:"health,omitempty"`
}

// Status assembles a snapshot, including health probe results when probes
// are registered. Probes share a short deadline so a stuck backend cannot
// hang a status request.
func (m *Manager) Status(ctx context.Context) Snapshot {
	m.mu.Lock()
	snap := Snapshot{
		Running:    m.running,
		StartedAt:  m.startedAt,
		QueueDepth: m.queue.Len(),
		Processed:  m.processed,
		Skipped:    m.skipped,
		Failed:     m.failed,
		LastError:  m.lastError,
	}
	if m.running {
		snap.UptimeSeconds = int64(time.Since(m.startedAt).Seconds())
	}
	for _, job := range m.active {
		snap.Active = append(snap.Active, job)
	}
	m.mu.Unlock()

	for _, entry := range m.queue.Snapshot() {
		snap.Queued = append(snap.Queued, QueuedEntry{
			Path:     entry.Path,
			Priority: int(entry.Priority),
		})
	}
	snap.Health = m.probeHealth(ctx)
	return snap
}

func (m *Manager) probeHealth(ctx context.Context) []HealthReport {
	if len(m.checks) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	reports := make([]HealthReport, 0, len(m.checks))
	for _, check := range m.checks {
		health := check.HealthCheck(ctx)
		reports = append(reports, HealthReport{
			Name:   health.Name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return reports
}
