// Package hotwords assembles recognition vocabulary hints from the
// translation glossary, title aliases, and metadata character names. Hints
// bias the recognizer toward proper nouns it would otherwise mangle.
package hotwords

import (
	"sort"
	"strings"

	"subweave/internal/language"
	"subweave/internal/scriptid"
)

// maxEntries bounds the vocabulary sent to a backend; providers reject
// oversized hint lists.
const maxEntries = 128

// asciiMaxSegments and nonASCIIMaxChars are provider-side limits on
// individual hint phrases.
const (
	asciiMaxSegments = 7
	nonASCIIMaxChars = 15
)

// Entry is one weighted vocabulary phrase.
type Entry struct {
	Text   string
	Weight int
}

// Sources carries the candidate phrases in priority order: glossary terms
// first, then title aliases, then character names.
type Sources struct {
	GlossaryTerms []string
	TitleAliases  []string
	Characters    []string
}

// Valid reports whether a phrase fits provider limits: ASCII phrases may
// have at most seven space-separated segments, non-ASCII phrases at most
// fifteen characters.
func Valid(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if isASCII(text) {
		return len(strings.Fields(text)) <= asciiMaxSegments
	}
	return len([]rune(text)) <= nonASCIIMaxChars
}

// Build filters, deduplicates, and weights the source phrases for the given
// audio language hints. Phrases in a script no hinted language uses are
// dropped: English-only hints reject kana, Japanese hints accept Latin
// loanwords. The result is capped at the provider limit.
func Build(sources Sources, langHints []string, weight int) []Entry {
	if weight <= 0 {
		weight = 4
	}
	langs := language.NormalizeList(langHints)

	ordered := make([]string, 0,
		len(sources.GlossaryTerms)+len(sources.TitleAliases)+len(sources.Characters))
	ordered = append(ordered, sortedCopy(sources.GlossaryTerms)...)
	ordered = append(ordered, sources.TitleAliases...)
	ordered = append(ordered, sources.Characters...)

	seen := make(map[string]struct{}, len(ordered))
	entries := make([]Entry, 0, len(ordered))
	for _, phrase := range ordered {
		phrase = strings.TrimSpace(phrase)
		if !Valid(phrase) {
			continue
		}
		if !allowedForLangs(phrase, langs) {
			continue
		}
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, Entry{Text: phrase, Weight: weight})
		if len(entries) == maxEntries {
			break
		}
	}
	return entries
}

// Texts flattens entries to their phrases.
func Texts(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Text)
	}
	return out
}

// allowedForLangs checks that the phrase's script is plausible for at least
// one hinted language. No hints means everything passes.
func allowedForLangs(phrase string, langs []string) bool {
	if len(langs) == 0 {
		return true
	}
	stats := scriptid.Analyze(phrase)
	for _, lang := range langs {
		switch lang {
		case "ja":
			if stats.Kana() > 0 || stats.Han > 0 || stats.Latin > 0 {
				return true
			}
		case "zh":
			if stats.Han > 0 {
				return true
			}
		case "ko":
			if stats.Hangul > 0 || stats.Latin > 0 {
				return true
			}
		default:
			// Latin-script languages accept Latin phrases only.
			if stats.Latin > 0 && stats.Kana() == 0 && stats.Han == 0 && stats.Hangul == 0 {
				return true
			}
		}
	}
	return false
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
