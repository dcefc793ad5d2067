package language

import (
	"strings"
	"unicode"

	iso6393 "github.com/barbashov/iso639-3"
)

// Auto is the recognizer wildcard: the backend detects the language itself.
const Auto = "auto"

func lookup(code string) *iso6393.Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if lang := iso6393.FromAnyCode(code); lang != nil {
		return lang
	}
	// Word forms like "english" are stored with an initial capital.
	return iso6393.FromName(capitalize(code))
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// stripRegion drops an IETF region subtag: "ja-JP" and "zh_CN" reduce to
// their base language code.
func stripRegion(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}

// Normalize reduces any recognized language code to its canonical short form:
// region subtags are dropped and three-letter codes collapse to two letters
// when the language has one ("jpn" and "ja-JP" both become "ja").
// Unrecognized input comes back lowercased with the region removed, never an
// error; callers treat unknown codes as opaque.
func Normalize(code string) string {
	cleaned := strings.ToLower(strings.TrimSpace(code))
	if cleaned == "" || cleaned == Auto {
		return cleaned
	}
	base := stripRegion(cleaned)
	if lang := lookup(base); lang != nil {
		if lang.Part1 != "" {
			return lang.Part1
		}
		if lang.Part3 != "" {
			return lang.Part3
		}
	}
	return base
}

// Matches reports whether two codes name the same language after normalization.
func Matches(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// IsSupported reports whether a recognizer advertising the given language
// list can transcribe lang. The Auto wildcard is always allowed, and an empty
// list means the backend takes anything.
func IsSupported(lang string, supported []string) bool {
	normalized := Normalize(lang)
	if normalized == Auto {
		return true
	}
	if len(supported) == 0 {
		return true
	}
	for _, candidate := range supported {
		if Normalize(candidate) == normalized {
			return true
		}
	}
	return false
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if lang := lookup(code); lang != nil && lang.Part1 != "" {
		return lang.Part1
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-3 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if lang := lookup(code); lang != nil && lang.Part3 != "" {
		return lang.Part3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if lang := lookup(code); lang != nil && lang.Name != "" {
		return lang.Name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		trimmed := Normalize(lang)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
