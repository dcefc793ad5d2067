package stage

import (
	"context"
	"strings"
)

// Stage names in execution order. Run metadata records these verbatim, and
// admission treats failures in the asr_* stages specially.
const (
	Init           = "init"
	Probe          = "probe"
	SubtitleSelect = "subtitle_select"
	ASRPrepare     = "asr_prepare"
	ASRCall        = "asr_call"
	Translate      = "translate"
	Finalize       = "finalize"
)

// Order lists the stages a full run walks through.
var Order = []string{Init, Probe, SubtitleSelect, ASRPrepare, ASRCall, Translate, Finalize}

// IsASR reports whether a failure in the named stage counts against the
// recognition failure budget.
func IsASR(name string) bool {
	return strings.HasPrefix(name, "asr_")
}

// HealthChecker is implemented by services the workflow manager polls for
// readiness before admitting work.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}
