// Package admission decides, once per dequeued path, whether a video may
// enter the pipeline. The gate applies the skip predicates in a fixed order
// (done marker, archived marker, pre-existing subtitle, live lock, failure
// cooldown), verifies the file has stopped growing, and finally acquires the
// per-file lock. Only a locked path proceeds.
package admission
