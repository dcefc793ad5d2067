package subtitles

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseSRT parses SRT content into cues. Index lines are optional and
// re-derived, timestamps tolerate a period in place of the millisecond comma,
// and blank-line separated blocks with no text are skipped.
func ParseSRT(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	var cues []Cue
	blocks := strings.Split(content, "\n\n")
	for _, block := range blocks {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		// Optional numeric index line.
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			lines = lines[1:]
			if len(lines) == 0 {
				continue
			}
		}
		startMS, endMS, err := parseTimingLine(lines[0])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", len(cues)+1, err)
		}
		text := strings.TrimSpace(strings.Join(lines[1:], "\n"))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{
			Index:   len(cues) + 1,
			StartMS: startMS,
			EndMS:   endMS,
			Text:    text,
		})
	}
	return cues, nil
}

// ParseSRTFile reads and parses an SRT file, decoding legacy encodings first.
func ParseSRTFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode srt %s: %w", path, err)
	}
	return ParseSRT(text)
}

// FormatSRT renders cues as SRT text. Indices are rewritten sequentially.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(formatTimestamp(cue.StartMS))
		b.WriteString(" --> ")
		b.WriteString(formatTimestamp(cue.EndMS))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(cue.Text))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteSRTFile writes cues to path atomically (temp file + rename) so a
// half-written subtitle never becomes visible to players or the watcher.
func WriteSRTFile(path string, cues []Cue) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(FormatSRT(cues)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize srt: %w", err)
	}
	return nil
}

func nonEmptyLines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return lines
}

func parseTimingLine(line string) (int64, int64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize period to comma (SRT standard uses comma for milliseconds).
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(strings.TrimSpace(hms[0]))
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(strings.TrimSpace(timeParts[1]))
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return int64(hours)*3600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(millis), nil
}

func formatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600_000
	ms -= hours * 3600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
