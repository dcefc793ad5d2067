package subtitles

import (
	"fmt"
	"path/filepath"
	"strings"

	astisub "github.com/tassa-yoniso-manasi-karoto/go-astisub"
)

// externalExtensions lists subtitle file extensions the pipeline accepts as
// reuse candidates next to a video.
var externalExtensions = map[string]struct{}{
	".srt": {},
	".ass": {},
	".ssa": {},
	".vtt": {},
	".stl": {},
}

// IsSubtitleFile reports whether path has a recognized subtitle extension.
func IsSubtitleFile(path string) bool {
	_, ok := externalExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// OpenExternal reads any supported subtitle file and converts it to cues.
// SRT goes through the native parser with legacy-encoding detection; other
// formats parse via go-astisub and flatten styled lines to plain text.
func OpenExternal(path string) ([]Cue, error) {
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return ParseSRTFile(path)
	}
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle %s: %w", path, err)
	}
	cues := make([]Cue, 0, len(subs.Items))
	for _, item := range subs.Items {
		text := flattenLines(item)
		if strings.TrimSpace(text) == "" {
			continue
		}
		cues = append(cues, Cue{
			Index:   len(cues) + 1,
			StartMS: item.StartAt.Milliseconds(),
			EndMS:   item.EndAt.Milliseconds(),
			Text:    text,
		})
	}
	return cues, nil
}

func flattenLines(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		var parts []string
		for _, li := range line.Items {
			if trimmed := strings.TrimSpace(li.Text); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}
