package subtitles

import "strings"

// Cue is one subtitle entry. Times are milliseconds from stream start.
type Cue struct {
	Index   int
	StartMS int64
	EndMS   int64
	Text    string
}

// DurationMS returns the cue's display duration in milliseconds.
func (c Cue) DurationMS() int64 {
	return c.EndMS - c.StartMS
}

// Empty reports whether the cue has no visible text.
func (c Cue) Empty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Reindex rewrites cue indices to the 1-based sequential order SRT requires.
func Reindex(cues []Cue) []Cue {
	for i := range cues {
		cues[i].Index = i + 1
	}
	return cues
}

// PlainText joins all cue texts with newlines, used for script and language
// sniffing over a whole track.
func PlainText(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cue.Text)
	}
	return b.String()
}
