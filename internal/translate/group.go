package translate

import (
	"strings"
	"unicode/utf8"

	langpkg "subweave/internal/language"
	"subweave/internal/segmenter"
	"subweave/internal/subtitles"
)

const defaultGroupingGapMS = 600

// Item is one cue prepared for translation with its surrounding context.
type Item struct {
	Index    int
	GroupID  int
	CurText  string
	PrevText string
	NextText string
	FullText string
}

// Group is a contiguous cue run treated as one translation context.
type Group struct {
	ID          int
	Indices     []int
	FullTextSrc string
}

// languageFamily tunes sentence-boundary heuristics per script family.
type languageFamily struct {
	terminals  string
	shortLimit int
	countWords bool
}

var (
	cjkFamily   = languageFamily{terminals: "。．！？!?…", shortLimit: 6}
	latinFamily = languageFamily{terminals: ".?!…", shortLimit: 3, countWords: true}
)

func familyFor(srcLang string) languageFamily {
	switch langpkg.Normalize(srcLang) {
	case "ja", "zh", "ko":
		return cjkFamily
	default:
		return latinFamily
	}
}

// BuildItems splits cues into translation groups and returns per-cue items
// carrying neighbour and group context. A cue joins the previous group when
// the gap is small and the previous cue did not end a sentence, or when the
// cue itself is a short fragment.
func BuildItems(cues []subtitles.Cue, srcLang string, gapMS int) ([]Item, []Group) {
	if gapMS <= 0 {
		gapMS = defaultGroupingGapMS
	}
	family := familyFor(srcLang)

	var groups []Group
	for i, cue := range cues {
		join := false
		if len(groups) > 0 {
			prev := cues[i-1]
			gap := cue.StartMS - prev.EndMS
			if gap <= int64(gapMS) {
				join = !family.terminal(prev.Text) || family.short(cue.Text)
			}
		}
		if join {
			last := &groups[len(groups)-1]
			last.Indices = append(last.Indices, i)
			last.FullTextSrc = segmenter.JoinText(last.FullTextSrc, cue.Text)
		} else {
			groups = append(groups, Group{
				ID:          len(groups),
				Indices:     []int{i},
				FullTextSrc: cue.Text,
			})
		}
	}

	items := make([]Item, len(cues))
	groupOf := make([]int, len(cues))
	for _, group := range groups {
		for _, idx := range group.Indices {
			groupOf[idx] = group.ID
		}
	}
	for i, cue := range cues {
		item := Item{
			Index:    i,
			GroupID:  groupOf[i],
			CurText:  cue.Text,
			FullText: groups[groupOf[i]].FullTextSrc,
		}
		if i > 0 {
			item.PrevText = cues[i-1].Text
		}
		if i+1 < len(cues) {
			item.NextText = cues[i+1].Text
		}
		items[i] = item
	}
	return items, groups
}

func (f languageFamily) terminal(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	return strings.ContainsRune(f.terminals, last)
}

func (f languageFamily) short(text string) bool {
	trimmed := strings.TrimSpace(text)
	if f.countWords {
		return len(strings.Fields(trimmed)) < f.shortLimit
	}
	return utf8.RuneCountInString(trimmed) < f.shortLimit
}
