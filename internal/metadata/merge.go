package metadata

import (
	"sort"
	"strings"
)

// Weighted pairs one provider answer with its merge weight
// (provider weight x answer confidence).
type Weighted struct {
	Meta   WorkMetadata
	Weight float64
}

// Merge combines per-provider answers into one record. The heaviest answer
// is primary: it contributes the original title, type, year, and
// season/episode numbers. Localised titles and external ids merge first-wins
// per key in weight order; characters union by original name; aliases union
// case-insensitively. The final confidence is the weighted average of
// participating confidences; below minConfidence the merge returns nil.
func Merge(results []Weighted, minConfidence float64) *WorkMetadata {
	participating := make([]Weighted, 0, len(results))
	for _, result := range results {
		if result.Weight > 0 && strings.TrimSpace(result.Meta.TitleOriginal) != "" {
			participating = append(participating, result)
		}
	}
	if len(participating) == 0 {
		return nil
	}
	sort.SliceStable(participating, func(i, j int) bool {
		return participating[i].Weight > participating[j].Weight
	})

	primary := participating[0].Meta
	merged := WorkMetadata{
		TitleOriginal:  primary.TitleOriginal,
		Type:           primary.Type,
		Year:           primary.Year,
		Season:         primary.Season,
		Episode:        primary.Episode,
		TitleLocalized: make(map[string]string),
		EpisodeTitle:   make(map[string]string),
		ExternalIDs:    make(map[string]string),
	}

	var weightSum, confidenceSum float64
	seenCharacters := make(map[string]int)
	for _, result := range participating {
		meta := result.Meta
		weightSum += result.Weight
		confidenceSum += result.Weight * meta.Confidence

		for lang, title := range meta.TitleLocalized {
			if _, exists := merged.TitleLocalized[lang]; !exists {
				merged.TitleLocalized[lang] = title
			}
		}
		for lang, title := range meta.EpisodeTitle {
			if _, exists := merged.EpisodeTitle[lang]; !exists {
				merged.EpisodeTitle[lang] = title
			}
		}
		for provider, id := range meta.ExternalIDs {
			if _, exists := merged.ExternalIDs[provider]; !exists {
				merged.ExternalIDs[provider] = id
			}
		}
		merged.Aliases = appendUnique(merged.Aliases, meta.Aliases...)
		for _, character := range meta.Characters {
			key := strings.ToLower(strings.TrimSpace(character.Name))
			if key == "" {
				continue
			}
			if idx, exists := seenCharacters[key]; exists {
				for lang, alias := range character.Aliases {
					if merged.Characters[idx].Aliases == nil {
						merged.Characters[idx].Aliases = make(map[string]string)
					}
					if _, have := merged.Characters[idx].Aliases[lang]; !have {
						merged.Characters[idx].Aliases[lang] = alias
					}
				}
				continue
			}
			seenCharacters[key] = len(merged.Characters)
			merged.Characters = append(merged.Characters, character)
		}
		merged.Sources = append(merged.Sources, meta.Sources...)
	}

	if weightSum > 0 {
		merged.Confidence = confidenceSum / weightSum
	}
	if merged.Confidence < minConfidence {
		return nil
	}
	return &merged
}
