// Package workflow runs the daemon's processing loop: a directory watcher
// feeds the priority queue, a fixed pool of workers drains it, the admission
// gate filters each dequeued path, and admitted jobs run through the
// pipeline under the job and ffmpeg concurrency limits.
package workflow
