package textutil

// TitleSimilarity compares two work titles on a 0..1 scale. Both sides are
// normalized first, so case, release noise, and episode markers do not count
// against the score. Latin multi-word titles compare by token fingerprint;
// CJK and single-token titles fall back to rune-bigram overlap, which keeps
// the measure meaningful for scripts without word boundaries.
func TitleSimilarity(a, b string) float64 {
	na := NormalizeTitle(a)
	nb := NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	fa := NewFingerprint(na)
	fb := NewFingerprint(nb)
	if fa.TokenCount() >= 2 && fb.TokenCount() >= 2 {
		return CosineSimilarity(fa, fb)
	}
	return bigramDice(na, nb)
}

// bigramDice computes the Sørensen–Dice coefficient over rune bigrams.
// Single-rune strings compare by equality.
func bigramDice(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		if string(ra) == string(rb) {
			return 1
		}
		return 0
	}

	counts := make(map[[2]rune]int, len(ra))
	for i := 0; i+1 < len(ra); i++ {
		counts[[2]rune{ra[i], ra[i+1]}]++
	}
	shared := 0
	for i := 0; i+1 < len(rb); i++ {
		key := [2]rune{rb[i], rb[i+1]}
		if counts[key] > 0 {
			counts[key]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ra)-1+len(rb)-1)
}
