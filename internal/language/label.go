package language

import "strings"

// labelHints maps substrings found in human-written track titles and file
// name suffixes to the ISO 639-2/B code of the language they indicate.
// Earlier entries win, so Japanese hints are checked before the broad
// Chinese ones.
var labelHints = []struct {
	code  string
	hints []string
}{
	{"jpn", []string{"japanese", "日本語", "日文", "jpn", "jap"}},
	{"chi", []string{"chinese", "中文", "简体", "繁体", "繁體", "chs", "cht", "zho", "chi"}},
	{"eng", []string{"english", "英文", "英语", "eng"}},
	{"kor", []string{"korean", "한국어", "韩语", "kor"}},
}

// short two-letter tokens are only honored standalone to avoid false hits
// inside ordinary words ("en" in "open").
var shortHints = map[string]string{
	"ja": "jpn",
	"zh": "chi",
	"en": "eng",
	"ko": "kor",
}

// GuessFromLabel scans a free-form label such as "Japanese (Full)" or
// "movie.chs.srt" for a language hint and returns the ISO 639-2/B code.
func GuessFromLabel(label string) (string, bool) {
	lowered := strings.ToLower(label)
	if strings.TrimSpace(lowered) == "" {
		return "", false
	}
	tokens := splitLabel(lowered)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = struct{}{}
	}
	for _, entry := range labelHints {
		for _, hint := range entry.hints {
			if len(hint) > 3 || !isASCII(hint) {
				if strings.Contains(lowered, hint) {
					return entry.code, true
				}
				continue
			}
			if _, ok := tokenSet[hint]; ok {
				return entry.code, true
			}
		}
	}
	for _, token := range tokens {
		if code, ok := shortHints[token]; ok {
			return code, true
		}
	}
	return "", false
}

func splitLabel(label string) []string {
	return strings.FieldsFunc(label, func(r rune) bool {
		switch r {
		case '.', '_', '-', ' ', '(', ')', '[', ']', ',', ':':
			return true
		}
		return false
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
