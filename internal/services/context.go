package services

import "context"

type contextKey string

const (
	jobPathKey contextKey = "job_path"
	stageKey   contextKey = "stage"
	workerKey  contextKey = "worker"
	runIDKey   contextKey = "run_id"
)

// WithJobPath annotates context with the video path the pipeline is working on.
func WithJobPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, jobPathKey, path)
}

// JobPathFromContext extracts the job path if present.
func JobPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobPathKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithWorker annotates context with the worker index serving the job.
func WithWorker(ctx context.Context, worker int) context.Context {
	return context.WithValue(ctx, workerKey, worker)
}

// WorkerFromContext returns the worker index if present.
func WorkerFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(workerKey).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// WithRunID annotates context with the per-attempt run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
