package queue

import (
	"subweave/internal/jobfiles"
)

// Priority classes, lower values served sooner. The numeric gaps leave room
// for operator-injected priorities between the classes.
type Priority int

const (
	PriorityFailed        Priority = 0
	PriorityMissingTarget Priority = 1
	PriorityDefault       Priority = 5
)

// String names the priority class for logs and status output.
func (p Priority) String() string {
	switch p {
	case PriorityFailed:
		return "failed"
	case PriorityMissingTarget:
		return "missing_target"
	default:
		return "default"
	}
}

// ComputePriority classifies a video at enqueue time. Translate failure logs
// outrank everything; a missing simplified-target SRT outranks routine
// rescans. With priorities disabled every entry is default class.
func ComputePriority(naming jobfiles.Naming, simplifiedTarget string, enabled bool) Priority {
	if !enabled {
		return PriorityDefault
	}
	if jobfiles.HasTranslateFailures(naming) {
		return PriorityFailed
	}
	if simplifiedTarget != "" && !jobfiles.Exists(naming.TranslatedSRTPath(simplifiedTarget)) {
		return PriorityMissingTarget
	}
	return PriorityDefault
}
