// Package pipeline runs the per-video job state machine: probe the
// container, pick a subtitle to reuse or recognise the audio, segment,
// translate, and finalize the on-disk markers. One Pipeline serves many
// jobs; each job owns its marker files for the duration of the run.
package pipeline
