package jobfiles

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"subweave/internal/logging"
)

// Run statuses recorded in the per-run meta file.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// RunMeta is the per-run audit record updated at every stage boundary.
type RunMeta struct {
	RunID      string `json:"run_id"`
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Run tracks one pipeline attempt: the meta file plus a rotated NDJSON event
// log, both named by run id.
type Run struct {
	naming Naming
	meta   RunMeta
	writer *logging.RotatingWriter
	logger *slog.Logger
}

// StartRun opens the audit trail for one attempt and writes the initial
// running record.
func StartRun(naming Naming, runID string, maxBytes int64, maxBackups int) (*Run, error) {
	writer, err := logging.NewRotatingWriter(naming.RunLogPath(runID), maxBytes, maxBackups)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	run := &Run{
		naming: naming,
		meta: RunMeta{
			RunID:     runID,
			Stage:     "init",
			Status:    RunStatusRunning,
			StartedAt: time.Now().UTC().Format(time.RFC3339),
		},
		writer: writer,
		logger: slog.New(slog.NewJSONHandler(writer, nil)),
	}
	if err := run.flushMeta(); err != nil {
		writer.Close()
		return nil, err
	}
	return run, nil
}

// Logger returns the NDJSON event logger scoped to this run.
func (r *Run) Logger() *slog.Logger { return r.logger }

// Meta returns a copy of the current run record.
func (r *Run) Meta() RunMeta { return r.meta }

// EnterStage records a stage transition while the run keeps going.
func (r *Run) EnterStage(stage string) error {
	r.meta.Stage = stage
	r.meta.Status = RunStatusRunning
	return r.flushMeta()
}

// Finish records the terminal status. The failing stage name is preserved in
// the meta file so restart classification can see where the run stopped.
func (r *Run) Finish(runErr error) error {
	r.meta.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	if runErr != nil {
		r.meta.Status = RunStatusFailed
		r.meta.Error = runErr.Error()
	} else {
		r.meta.Status = RunStatusDone
	}
	metaErr := r.flushMeta()
	if closeErr := r.writer.Close(); metaErr == nil {
		metaErr = closeErr
	}
	return metaErr
}

func (r *Run) flushMeta() error {
	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run meta: %w", err)
	}
	path := r.naming.RunMetaPath(r.meta.RunID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write run meta: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish run meta: %w", err)
	}
	return nil
}
