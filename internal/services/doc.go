// Package services defines shared utilities consumed by the pipeline stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job paths, stage names, and run identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (retryable vs fatal) uniform across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
