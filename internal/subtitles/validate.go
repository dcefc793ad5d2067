package subtitles

import (
	"fmt"
	"sort"
)

// minFixDurationMS is the display time given to cues whose timing collapses
// during repair.
const minFixDurationMS = 500

// Validate repairs structural problems in a cue list and reports what it
// fixed. Empty cues are dropped, negative starts clamp to zero, inverted
// timing gets a minimum duration, overlapping cues shift forward to start at
// the previous end keeping their duration, and indices are rewritten.
// Running Validate on its own output is a no-op.
func Validate(cues []Cue) ([]Cue, []string) {
	var issues []string
	repaired := make([]Cue, 0, len(cues))

	for _, cue := range cues {
		if cue.Empty() {
			issues = append(issues, fmt.Sprintf("cue %d: empty text dropped", cue.Index))
			continue
		}
		repaired = append(repaired, cue)
	}

	sort.SliceStable(repaired, func(i, j int) bool {
		return repaired[i].StartMS < repaired[j].StartMS
	})

	var prevEnd int64
	for i := range repaired {
		cue := &repaired[i]
		if cue.StartMS < 0 {
			issues = append(issues, fmt.Sprintf("cue %d: negative start clamped", i+1))
			cue.StartMS = 0
		}
		if cue.StartMS < prevEnd {
			issues = append(issues, fmt.Sprintf("cue %d: overlaps previous cue, shifted to %dms", i+1, prevEnd))
			dur := cue.EndMS - cue.StartMS
			cue.StartMS = prevEnd
			cue.EndMS = prevEnd + dur
		}
		if cue.EndMS <= cue.StartMS {
			issues = append(issues, fmt.Sprintf("cue %d: end before start, extended", i+1))
			cue.EndMS = cue.StartMS + minFixDurationMS
		}
		prevEnd = cue.EndMS
	}

	return Reindex(repaired), issues
}
