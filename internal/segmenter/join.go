package segmenter

import "unicode"

// JoinText concatenates two text fragments, inserting a space only when both
// boundary characters are spaced-script text. CJK fragments join directly;
// Latin fragments keep the single word separator.
func JoinText(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if isCJK(lastRune(a)) || isCJK(firstRune(b)) {
		return a + b
	}
	return a + " " + b
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		(r >= 0x3000 && r <= 0x303F) || // CJK punctuation
		(r >= 0xFF00 && r <= 0xFF60) // fullwidth forms
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}
