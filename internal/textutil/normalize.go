package textutil

import (
	"regexp"
	"strings"
)

var (
	bracketGroupPattern = regexp.MustCompile(`[\[【(（][^\]】)）]*[\]】)）]`)
	seasonEpisodePattern = regexp.MustCompile(`(?i)\bS\d{1,2}E\d{1,4}\b`)
	episodeTokenPattern  = regexp.MustCompile(`(?i)\bEP?\.?\s?\d{1,4}\b`)
	cjkEpisodePattern    = regexp.MustCompile(`第\s*\d{1,4}\s*[话話集]`)
	yearPattern          = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	spaceRunPattern      = regexp.MustCompile(`\s+`)
	slugStripPattern     = regexp.MustCompile(`[^a-z0-9]+`)
)

// releaseNoiseTokens are scene-release markers stripped from file names before
// titles are compared or sent to metadata providers.
var releaseNoiseTokens = []string{
	"2160p", "1080p", "720p", "480p", "4k", "8k",
	"web-dl", "webdl", "webrip", "bluray", "blu-ray", "bdrip", "brrip", "dvdrip", "hdtv", "remux",
	"x264", "x265", "h264", "h265", "hevc", "avc", "av1",
	"aac", "ac3", "eac3", "dts", "flac", "opus", "ddp5", "truehd", "atmos",
	"10bit", "8bit", "hdr", "hdr10", "dv", "sdr", "uhd", "hi10p",
	"multi", "dual", "subbed", "dubbed", "raw", "uncensored",
}

// CleanTitle strips release-group brackets, season/episode markers, and
// quality/codec noise from a file-name-derived title while preserving case.
func CleanTitle(raw string) string {
	text := bracketGroupPattern.ReplaceAllString(raw, " ")
	text = strings.NewReplacer(".", " ", "_", " ").Replace(text)
	text = seasonEpisodePattern.ReplaceAllString(text, " ")
	text = cjkEpisodePattern.ReplaceAllString(text, " ")
	text = episodeTokenPattern.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, field := range fields {
		lowered := strings.ToLower(strings.Trim(field, "-"))
		if lowered == "" {
			continue
		}
		if isNoiseToken(lowered) {
			continue
		}
		kept = append(kept, field)
	}
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(strings.Join(kept, " "), " "))
}

func isNoiseToken(lowered string) bool {
	for _, noise := range releaseNoiseTokens {
		if lowered == noise {
			return true
		}
	}
	return false
}

// NormalizeTitle lowercases CleanTitle output and drops bare year tokens,
// yielding the canonical form used for similarity comparison.
func NormalizeTitle(raw string) string {
	cleaned := strings.ToLower(CleanTitle(raw))
	cleaned = yearPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(cleaned, " "))
}

// Slugify reduces a title to a lowercase underscore-joined slug with episode
// markers removed, suitable for alias-map keys.
func Slugify(title string) string {
	normalized := NormalizeTitle(title)
	slug := slugStripPattern.ReplaceAllString(normalized, "_")
	return strings.Trim(slug, "_")
}

// ExtractYear pulls the first plausible release year out of a free-form value
// such as "2024-01-01" or "1999". Returns 0 when no year is present.
func ExtractYear(value string) int {
	match := yearPattern.FindString(value)
	if match == "" {
		return 0
	}
	year := 0
	for _, r := range match {
		year = year*10 + int(r-'0')
	}
	return year
}
