package audio

import (
	"strconv"
	"strings"

	langpkg "subweave/internal/language"
	"subweave/internal/media/ffprobe"
)

// Options steer dialogue track selection. Explicit overrides win over
// scoring: TrackIndex picks the nth audio stream outright, TrackLang
// restricts candidates to one language.
type Options struct {
	PreferredLangs  []string
	ExcludeKeywords []string
	TrackIndex      int // -1 means unset; counts audio streams only
	TrackLang       string
}

// Selection describes the audio track chosen for recognition.
type Selection struct {
	Stream      ffprobe.Stream
	StreamIndex int // container stream index, -1 when nothing selected
	AudioIndex  int // position among audio streams, for ffmpeg -map 0:a:N
	Language    string
	Commentary  bool // true when only commentary-flagged tracks existed
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if s.StreamIndex < 0 {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// Select picks the dialogue track to transcribe. Commentary tracks are
// excluded by title keyword, then candidates rank by preferred-language
// order, default flag, and channel count, with earlier tracks winning ties.
// When every track looks like commentary the least-bad one is still returned
// so the job can proceed.
func Select(streams []ffprobe.Stream, opts Options) Selection {
	candidates := buildCandidates(streams, opts)
	if len(candidates) == 0 {
		return Selection{StreamIndex: -1}
	}

	if opts.TrackIndex >= 0 {
		for _, cand := range candidates {
			if cand.audioIndex == opts.TrackIndex {
				return cand.selection()
			}
		}
		return Selection{StreamIndex: -1}
	}

	pool := candidates
	if lang := langpkg.Normalize(opts.TrackLang); lang != "" {
		filtered := pool.withLanguage(lang)
		if len(filtered) > 0 {
			pool = filtered
		}
	}
	if clean := pool.withoutCommentary(); len(clean) > 0 {
		pool = clean
	}

	best := pool[0]
	bestScore := scoreCandidate(best, opts.PreferredLangs)
	for i := 1; i < len(pool); i++ {
		if score := scoreCandidate(pool[i], opts.PreferredLangs); score > bestScore {
			best = pool[i]
			bestScore = score
		}
	}
	return best.selection()
}

// candidate captures the derived metadata used for audio ranking.
type candidate struct {
	stream         ffprobe.Stream
	audioIndex     int
	language       string
	title          string
	commentary     bool
	channels       int
	defaultFlagged bool
}

func (c candidate) selection() Selection {
	return Selection{
		Stream:      c.stream,
		StreamIndex: c.stream.Index,
		AudioIndex:  c.audioIndex,
		Language:    c.language,
		Commentary:  c.commentary,
	}
}

type candidateList []candidate

func (c candidateList) withLanguage(lang string) candidateList {
	result := make(candidateList, 0, len(c))
	for _, cand := range c {
		if cand.language == lang {
			result = append(result, cand)
		}
	}
	return result
}

func (c candidateList) withoutCommentary() candidateList {
	result := make(candidateList, 0, len(c))
	for _, cand := range c {
		if !cand.commentary {
			result = append(result, cand)
		}
	}
	return result
}

func scoreCandidate(cand candidate, preferred []string) float64 {
	score := 0.0

	// Language priority dominates everything else.
	for i, lang := range preferred {
		if cand.language == langpkg.Normalize(lang) {
			score += float64(1000 * (len(preferred) - i))
			break
		}
	}

	if cand.defaultFlagged {
		score += 100
	}

	// More channels usually means the main mix rather than a downmix.
	switch {
	case cand.channels >= 6:
		score += 30
	case cand.channels >= 2:
		score += 20
	case cand.channels > 0:
		score += 10
	}

	// Prefer earlier tracks when scores tie.
	score -= float64(cand.audioIndex) * 0.1

	return score
}

func buildCandidates(streams []ffprobe.Stream, opts Options) candidateList {
	result := make(candidateList, 0)
	audioIndex := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		cand := candidate{
			stream:         stream,
			audioIndex:     audioIndex,
			language:       langpkg.Normalize(langpkg.ExtractFromTags(stream.Tags)),
			title:          normalizeTitle(stream.Tags),
			channels:       channelCount(stream),
			defaultFlagged: stream.Disposition != nil && stream.Disposition["default"] == 1,
		}
		cand.commentary = detectCommentary(stream, cand.title, opts.ExcludeKeywords)
		result = append(result, cand)
		audioIndex++
	}
	return result
}

func normalizeTitle(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func detectCommentary(stream ffprobe.Stream, normalizedTitle string, keywords []string) bool {
	if stream.Disposition != nil && stream.Disposition["comment"] == 1 {
		return true
	}
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(normalizedTitle, keyword) {
			return true
		}
	}
	return false
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	if layout == "" {
		return 0
	}
	prefixes := []struct {
		prefix   string
		channels int
	}{
		{"7.1", 8}, {"6.1", 7}, {"5.1", 6}, {"4.0", 4}, {"2.1", 3}, {"2.0", 2}, {"1.0", 1},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(layout, p.prefix) {
			return p.channels
		}
	}
	if strings.Contains(layout, ".") {
		parts := strings.Split(layout, ".")
		total := 0
		for _, part := range parts {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if part == "" {
				continue
			}
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		if total > 0 {
			return total
		}
	}
	return 0
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := langpkg.ExtractFromTags(stream.Tags); lang != "" {
		parts = append(parts, lang)
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if stream.Tags != nil {
		if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
			parts = append(parts, title)
		}
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
