package translate

import (
	"fmt"
	"regexp"
	"strings"

	langpkg "subweave/internal/language"
)

// ErrLineCount reports a batch whose response did not yield exactly one
// line per item.
type lineCountError struct {
	want, got int
}

func (e *lineCountError) Error() string {
	return fmt.Sprintf("translation returned %d lines, want %d", e.got, e.want)
}

const contextSystemPrompt = `You are a professional subtitle translator.
Translate the CURRENT line from %s to %s.
Use the surrounding lines only to resolve pronouns, names, and tone.
Reply with the translated CURRENT line only: one line, no numbering, no quotes, no explanations.`

const bulkSystemPrompt = `You are a professional subtitle translator.
Translate each numbered line from %s to %s.
Keep exactly one output line per input line, preserving the [n] numbering.
Do not merge, split, or skip lines. No explanations.`

func languageName(code string) string {
	if name := langpkg.DisplayName(code); name != "" {
		return name
	}
	return code
}

// contextPrompt renders the single-item prompt with the full group context.
func contextPrompt(item Item) string {
	var b strings.Builder
	if item.FullText != "" && item.FullText != item.CurText {
		fmt.Fprintf(&b, "Full sentence context:\n%s\n\n", item.FullText)
	}
	if item.PrevText != "" {
		fmt.Fprintf(&b, "Previous line:\n%s\n\n", item.PrevText)
	}
	if item.NextText != "" {
		fmt.Fprintf(&b, "Next line:\n%s\n\n", item.NextText)
	}
	fmt.Fprintf(&b, "CURRENT line:\n%s", item.CurText)
	return b.String()
}

// bulkPrompt renders the numbered-line prompt for a batch of items.
func bulkPrompt(items []Item) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, item.CurText)
	}
	return strings.TrimRight(b.String(), "\n")
}

var numberPrefixPattern = regexp.MustCompile(`^\s*[\[(]?(\d{1,4})[\]).:]?\s*`)

// parseSingleLine extracts the one translated line from a context-mode
// response. Stray numbering and wrapping quotes are tolerated.
func parseSingleLine(response string) (string, error) {
	lines := nonEmptyLines(response)
	if len(lines) != 1 {
		return "", &lineCountError{want: 1, got: len(lines)}
	}
	return stripDecorations(lines[0]), nil
}

// parseNumbered splits a bulk-mode response into exactly n lines, stripping
// the [n] prefixes. Any other shape fails the batch.
func parseNumbered(response string, n int) ([]string, error) {
	lines := nonEmptyLines(response)
	if len(lines) != n {
		return nil, &lineCountError{want: n, got: len(lines)}
	}
	out := make([]string, n)
	for i, line := range lines {
		out[i] = stripDecorations(line)
	}
	return out, nil
}

func nonEmptyLines(response string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(response, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func stripDecorations(line string) string {
	line = numberPrefixPattern.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if len(line) >= 2 {
		if (line[0] == '"' && line[len(line)-1] == '"') ||
			(strings.HasPrefix(line, "「") && strings.HasSuffix(line, "」")) {
			line = strings.TrimSuffix(strings.TrimPrefix(line, `"`), `"`)
			line = strings.TrimSuffix(strings.TrimPrefix(line, "「"), "」")
			line = strings.TrimSpace(line)
		}
	}
	return line
}
