// Package scriptid classifies subtitle text by writing system. It backs two
// pipeline decisions: whether an embedded subtitle track really is the
// language its label claims (reuse confidence), and whether Chinese text is
// simplified or traditional (variant detection).
package scriptid

import (
	"unicode"

	"subweave/internal/language"
)

// Stats is a rune histogram of the scripts present in a text.
type Stats struct {
	Hiragana int
	Katakana int
	Han      int
	Latin    int
	Hangul   int
	Total    int
}

// Kana returns the combined hiragana and katakana count.
func (s Stats) Kana() int {
	return s.Hiragana + s.Katakana
}

// HasKana reports whether the text contains any Japanese kana.
func (s Stats) HasKana() bool {
	return s.Kana() > 0
}

// Analyze counts letters per writing system. Digits, punctuation, and
// whitespace are ignored; Total is the number of counted letters.
func Analyze(text string) Stats {
	var s Stats
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hiragana, r):
			s.Hiragana++
		case unicode.Is(unicode.Katakana, r):
			s.Katakana++
		case unicode.Is(unicode.Han, r):
			s.Han++
		case unicode.Is(unicode.Latin, r):
			s.Latin++
		case unicode.Is(unicode.Hangul, r):
			s.Hangul++
		default:
			continue
		}
		s.Total++
	}
	return s
}

// Confidence scores how plausibly text is written in lang, on a 0..1 scale.
// Japanese credits kana fully and Han characters at a discount, because
// kanji-only lines are common in Japanese but indistinguishable from Chinese.
func Confidence(text, lang string) float64 {
	return confidence(Analyze(text), lang)
}

func confidence(s Stats, lang string) float64 {
	if s.Total == 0 {
		return 0
	}
	total := float64(s.Total)
	switch language.Normalize(lang) {
	case "ja":
		return (float64(s.Kana()) + 0.4*float64(s.Han)) / total
	case "zh":
		return float64(s.Han) / total
	case "en":
		return float64(s.Latin) / total
	case "ko":
		return float64(s.Hangul) / total
	default:
		return 0
	}
}

// defaultReuseLangs are tried when the caller has no language hints.
var defaultReuseLangs = []string{"ja", "zh", "en"}

// ReuseConfidence scores text against the hinted languages and returns the
// best language with its confidence. Hints come from track tags or file name
// suffixes; when absent, the common pipeline languages are tried.
func ReuseConfidence(text string, hints []string) (string, float64) {
	langs := language.NormalizeList(hints)
	if len(langs) == 0 {
		langs = defaultReuseLangs
	}
	stats := Analyze(text)
	bestLang := ""
	bestScore := 0.0
	for _, lang := range langs {
		if score := confidence(stats, lang); score > bestScore {
			bestLang = lang
			bestScore = score
		}
	}
	return bestLang, bestScore
}
