package subtitles

import (
	"strings"

	"github.com/rivo/uniseg"
)

// WrapText breaks long subtitle lines at maxChars visible characters,
// counting grapheme clusters so combined emoji and composed characters never
// split mid-glyph. Lines with spaces wrap at word boundaries; CJK text,
// which has none, breaks at the character limit. maxChars <= 0 disables
// wrapping. Existing line breaks are preserved.
func WrapText(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		wrapped = append(wrapped, wrapLine(line, maxChars)...)
	}
	return strings.Join(wrapped, "\n")
}

func wrapLine(line string, maxChars int) []string {
	if uniseg.GraphemeClusterCount(line) <= maxChars {
		return []string{line}
	}
	if strings.Contains(strings.TrimSpace(line), " ") {
		return wrapWords(line, maxChars)
	}
	return wrapGraphemes(line, maxChars)
}

func wrapWords(line string, maxChars int) []string {
	words := strings.Fields(line)
	var out []string
	var current strings.Builder
	currentLen := 0
	for _, word := range words {
		wordLen := uniseg.GraphemeClusterCount(word)
		switch {
		case currentLen == 0:
		case currentLen+1+wordLen > maxChars:
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		default:
			current.WriteByte(' ')
			currentLen++
		}
		if wordLen > maxChars && currentLen == 0 {
			// A single oversized word still has to break somewhere.
			pieces := wrapGraphemes(word, maxChars)
			out = append(out, pieces[:len(pieces)-1]...)
			last := pieces[len(pieces)-1]
			current.WriteString(last)
			currentLen = uniseg.GraphemeClusterCount(last)
			continue
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		out = append(out, current.String())
	}
	return out
}

func wrapGraphemes(line string, maxChars int) []string {
	var out []string
	var current strings.Builder
	count := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		current.WriteString(gr.Str())
		count++
		if count == maxChars {
			out = append(out, current.String())
			current.Reset()
			count = 0
		}
	}
	if count > 0 {
		out = append(out, current.String())
	}
	return out
}
