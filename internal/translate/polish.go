package translate

import (
	"context"
	"fmt"
	"strings"

	"subweave/internal/logging"
	"subweave/internal/subtitles"
)

const polishSystemPrompt = `You are a subtitle editor refining a %s translation of %s dialogue.
For each numbered pair, improve the TRANSLATION's fluency and register without changing its meaning.
Reply with exactly one output line per pair, preserving the [n] numbering. No explanations.`

// Polish refines translated cues chunk by chunk. A chunk whose
// response breaks the line-count invariant is left unchanged; polish never
// fails the job.
func (t *Translator) Polish(ctx context.Context, source, translated []subtitles.Cue, srcLang, dstLang string) []subtitles.Cue {
	if len(translated) == 0 || len(source) != len(translated) {
		return translated
	}
	size := t.cfg.PolishBatchSize
	if size <= 0 {
		size = defaultPolishBatchSize
	}

	out := make([]subtitles.Cue, len(translated))
	copy(out, translated)
	system := fmt.Sprintf(polishSystemPrompt, languageName(dstLang), languageName(srcLang))

	for start := 0; start < len(out); start += size {
		end := start + size
		if end > len(out) {
			end = len(out)
		}
		if ctx.Err() != nil {
			return out
		}
		if err := t.wait(ctx); err != nil {
			return out
		}
		response, err := t.model.Complete(ctx, system, polishPrompt(source[start:end], out[start:end]))
		if err != nil {
			t.logger.Warn("polish chunk failed, keeping original translation",
				logging.Int("start", start),
				logging.Error(err))
			continue
		}
		lines, err := parseNumbered(response, end-start)
		if err != nil {
			t.logger.Warn("polish chunk line count mismatch, keeping original translation",
				logging.Int("start", start),
				logging.Error(err))
			continue
		}
		for i, line := range lines {
			if line != "" {
				out[start+i].Text = line
			}
		}
	}
	return out
}

func polishPrompt(source, translated []subtitles.Cue) string {
	var b strings.Builder
	for i := range source {
		fmt.Fprintf(&b, "[%d] SOURCE: %s\n", i+1, source[i].Text)
		fmt.Fprintf(&b, "[%d] TRANSLATION: %s\n", i+1, translated[i].Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
