// Package segmenter turns recognizer output into display-ready subtitle
// cues. It rebuilds sentences from word timings when asked (auto mode),
// merges fragments too short to read, and splits lines too long to display.
package segmenter

import (
	"strings"

	"github.com/rivo/uniseg"

	"subweave/internal/config"
	"subweave/internal/subtitles"
)

// Word is a recognizer token with timing.
type Word struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// Sentence is a timed unit of recognized speech. Words may be empty when the
// backend only returns sentence-level timing.
type Sentence struct {
	StartMS int64
	EndMS   int64
	Text    string
	Words   []Word
}

// Settings control segmentation. Durations are milliseconds, character
// limits count grapheme clusters.
type Settings struct {
	Mode          string
	MaxDurationMS int64
	MaxChars      int
	MinDurationMS int64
	MinChars      int
	MergeGapMS    int64
}

// FromConfig converts the config section into segmenter settings.
func FromConfig(cfg config.Segment) Settings {
	return Settings{
		Mode:          cfg.Mode,
		MaxDurationMS: int64(cfg.MaxDurationSeconds * 1000),
		MaxChars:      cfg.MaxChars,
		MinDurationMS: int64(cfg.MinDurationSeconds * 1000),
		MinChars:      cfg.MinChars,
		MergeGapMS:    int64(cfg.MergeGapMS),
	}
}

// Segment produces cues from recognizer sentences. Auto mode rebuilds
// sentence boundaries from word timings first; post mode trusts the
// backend's sentences. Both then merge unreadably short cues and split
// overlong ones.
func Segment(sentences []Sentence, s Settings) []subtitles.Cue {
	if s.Mode == "auto" {
		if words := collectWords(sentences); len(words) > 0 {
			sentences = BuildFromWords(words)
		}
	}
	sentences = mergeShort(sentences, s)
	sentences = splitLong(sentences, s)

	cues := make([]subtitles.Cue, 0, len(sentences))
	for _, sentence := range sentences {
		text := strings.TrimSpace(sentence.Text)
		if text == "" {
			continue
		}
		cues = append(cues, subtitles.Cue{
			StartMS: sentence.StartMS,
			EndMS:   sentence.EndMS,
			Text:    text,
		})
	}
	return subtitles.Reindex(cues)
}

func collectWords(sentences []Sentence) []Word {
	var words []Word
	for _, sentence := range sentences {
		words = append(words, sentence.Words...)
	}
	return words
}

// sentenceEnders close a sentence when they terminate a word.
const sentenceEnders = "。！？!?.…"

// pauseBreakMS ends a sentence at a silence long enough to be a speech
// boundary even without punctuation.
const pauseBreakMS = 1200

// BuildFromWords groups word timings into sentences, breaking after
// sentence-ending punctuation and at long pauses.
func BuildFromWords(words []Word) []Sentence {
	var sentences []Sentence
	var current *Sentence
	for _, word := range words {
		text := strings.TrimSpace(word.Text)
		if text == "" {
			continue
		}
		if current != nil && word.StartMS-current.EndMS > pauseBreakMS {
			sentences = append(sentences, *current)
			current = nil
		}
		if current == nil {
			current = &Sentence{StartMS: word.StartMS, EndMS: word.EndMS, Text: text, Words: []Word{word}}
		} else {
			current.Text = JoinText(current.Text, text)
			current.EndMS = word.EndMS
			current.Words = append(current.Words, word)
		}
		if strings.ContainsRune(sentenceEnders, lastRune(text)) {
			sentences = append(sentences, *current)
			current = nil
		}
	}
	if current != nil {
		sentences = append(sentences, *current)
	}
	return sentences
}

// mergeShort folds fragments below the readability floor into the next
// sentence when the silence between them is small.
func mergeShort(sentences []Sentence, s Settings) []Sentence {
	if len(sentences) < 2 {
		return sentences
	}
	out := make([]Sentence, 0, len(sentences))
	i := 0
	for i < len(sentences) {
		current := sentences[i]
		for i+1 < len(sentences) && isShort(current, s) && sentences[i+1].StartMS-current.EndMS <= s.MergeGapMS {
			next := sentences[i+1]
			current = Sentence{
				StartMS: current.StartMS,
				EndMS:   next.EndMS,
				Text:    JoinText(current.Text, next.Text),
				Words:   append(append([]Word(nil), current.Words...), next.Words...),
			}
			i++
		}
		out = append(out, current)
		i++
	}
	return out
}

func isShort(sentence Sentence, s Settings) bool {
	if s.MinDurationMS > 0 && sentence.EndMS-sentence.StartMS < s.MinDurationMS {
		return true
	}
	if s.MinChars > 0 && uniseg.GraphemeClusterCount(sentence.Text) < s.MinChars {
		return true
	}
	return false
}

// splitLong breaks sentences over the duration or character cap. Word
// timings give accurate split points; without them time is apportioned by
// character count.
func splitLong(sentences []Sentence, s Settings) []Sentence {
	out := make([]Sentence, 0, len(sentences))
	for _, sentence := range sentences {
		if !isLong(sentence, s) {
			out = append(out, sentence)
			continue
		}
		if len(sentence.Words) > 1 {
			out = append(out, splitByWords(sentence, s)...)
		} else {
			out = append(out, splitByChars(sentence, s)...)
		}
	}
	return out
}

func isLong(sentence Sentence, s Settings) bool {
	if s.MaxDurationMS > 0 && sentence.EndMS-sentence.StartMS > s.MaxDurationMS {
		return true
	}
	if s.MaxChars > 0 && uniseg.GraphemeClusterCount(sentence.Text) > s.MaxChars {
		return true
	}
	return false
}

func splitByWords(sentence Sentence, s Settings) []Sentence {
	var out []Sentence
	var current *Sentence
	for _, word := range sentence.Words {
		if current == nil {
			c := Sentence{StartMS: word.StartMS, EndMS: word.EndMS, Text: word.Text, Words: []Word{word}}
			current = &c
			continue
		}
		candidate := JoinText(current.Text, word.Text)
		tooLong := (s.MaxChars > 0 && uniseg.GraphemeClusterCount(candidate) > s.MaxChars) ||
			(s.MaxDurationMS > 0 && word.EndMS-current.StartMS > s.MaxDurationMS)
		if tooLong {
			out = append(out, *current)
			c := Sentence{StartMS: word.StartMS, EndMS: word.EndMS, Text: word.Text, Words: []Word{word}}
			current = &c
			continue
		}
		current.Text = candidate
		current.EndMS = word.EndMS
		current.Words = append(current.Words, word)
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

func splitByChars(sentence Sentence, s Settings) []Sentence {
	total := uniseg.GraphemeClusterCount(sentence.Text)
	if total == 0 {
		return []Sentence{sentence}
	}
	limit := s.MaxChars
	if limit <= 0 {
		limit = total/2 + 1
	}
	pieces := chunkGraphemes(sentence.Text, limit)
	duration := sentence.EndMS - sentence.StartMS
	out := make([]Sentence, 0, len(pieces))
	cursor := sentence.StartMS
	counted := 0
	for i, piece := range pieces {
		n := uniseg.GraphemeClusterCount(piece)
		counted += n
		end := sentence.StartMS + duration*int64(counted)/int64(total)
		if i == len(pieces)-1 {
			end = sentence.EndMS
		}
		out = append(out, Sentence{StartMS: cursor, EndMS: end, Text: piece})
		cursor = end
	}
	return out
}

func chunkGraphemes(text string, limit int) []string {
	var out []string
	var current strings.Builder
	count := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		current.WriteString(gr.Str())
		count++
		if count == limit {
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
