package subtitles

import "strings"

// BuildBilingual produces cues showing the translation above the original
// text. Both slices must be position-aligned; cues whose translation is
// empty fall back to the source line alone.
func BuildBilingual(source, translated []Cue) []Cue {
	out := make([]Cue, 0, len(source))
	for i, src := range source {
		text := src.Text
		if i < len(translated) {
			if dst := strings.TrimSpace(translated[i].Text); dst != "" && dst != strings.TrimSpace(src.Text) {
				text = dst + "\n" + src.Text
			}
		}
		out = append(out, Cue{
			Index:   len(out) + 1,
			StartMS: src.StartMS,
			EndMS:   src.EndMS,
			Text:    text,
		})
	}
	return out
}
