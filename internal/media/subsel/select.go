package subsel

import (
	"os"
	"path/filepath"
	"strings"

	langpkg "subweave/internal/language"
	"subweave/internal/media"
)

// Selection modes. Ignore skips embedded and external subtitles entirely,
// reference allows a pick that is consulted but never copied to the output,
// reuse-if-good lets a confident text subtitle replace recognition.
const (
	ModeIgnore      = "ignore"
	ModeReference   = "reference"
	ModeReuseIfGood = "reuse_if_good"
)

// Kind tells embedded container streams apart from sibling files.
type Kind string

const (
	KindEmbedded Kind = "embedded"
	KindExternal Kind = "external"
)

// Track is a reuse candidate from either origin.
type Track struct {
	Kind          Kind
	Language      string // normalized, may be empty
	Title         string
	Codec         string
	Forced        bool
	Default       bool
	ImageBased    bool
	SubtitleIndex int    // embedded: position among subtitle streams
	Path          string // external: sibling file path
}

// Options steer candidate selection.
type Options struct {
	Mode        string
	TargetLangs []string // destination languages, most wanted first
	SourceLangs []string // acceptable source languages, most wanted first
}

// Selection is the chosen candidate, if any. TargetMatch means the track is
// already in a destination language, so translation can be skipped.
// ReferenceOnly marks a forced image-based pick that must never be loaded.
type Selection struct {
	Track         Track
	Found         bool
	TargetMatch   bool
	ReferenceOnly bool
}

// FromProbe converts probed subtitle streams into candidates.
func FromProbe(tracks []media.SubtitleTrack) []Track {
	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		result = append(result, Track{
			Kind:          KindEmbedded,
			Language:      t.Language,
			Title:         t.Title,
			Codec:         t.Codec,
			Forced:        t.Forced,
			Default:       t.Default,
			ImageBased:    t.ImageBased,
			SubtitleIndex: t.SubtitleIndex,
		})
	}
	return result
}

var externalExtensions = map[string]struct{}{
	".srt": {},
	".ass": {},
	".ssa": {},
	".vtt": {},
}

// ScanSiblings finds subtitle files next to the video that share its
// basename, such as movie.srt or movie.ja.ass. The language is taken from
// the token between basename and extension when present.
func ScanSiblings(videoPath string) []Track {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var result []Track
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := externalExtensions[ext]; !ok {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem != base && !strings.HasPrefix(stem, base+".") {
			continue
		}
		track := Track{
			Kind: KindExternal,
			Path: filepath.Join(dir, name),
		}
		if label := strings.TrimPrefix(stem, base+"."); label != stem && label != "" {
			track.Title = label
			if lang := langpkg.Normalize(label); lang != "" {
				track.Language = lang
			} else if code, ok := langpkg.GuessFromLabel(label); ok {
				track.Language = langpkg.Normalize(code)
			}
		}
		result = append(result, track)
	}
	return result
}

// Select picks at most one candidate. Destination-language preferences are
// tried before source-language ones, so an existing translated subtitle wins
// over recognising and translating from scratch.
func Select(tracks []Track, opts Options) Selection {
	if opts.Mode == ModeIgnore || opts.Mode == "" {
		return Selection{}
	}

	if pick, ok := bestForLangs(tracks, opts.TargetLangs, opts.Mode); ok {
		pick.TargetMatch = !pick.ReferenceOnly
		return pick
	}
	if pick, ok := bestForLangs(tracks, opts.SourceLangs, opts.Mode); ok {
		return pick
	}
	return Selection{}
}

func bestForLangs(tracks []Track, langs []string, mode string) (Selection, bool) {
	for _, lang := range langs {
		lang = langpkg.Normalize(lang)
		if lang == "" {
			continue
		}
		var best Track
		bestScore := -1.0
		for i, track := range tracks {
			if !langpkg.Matches(track.Language, lang) {
				continue
			}
			if !usable(track, mode) {
				continue
			}
			if score := rank(track, i); score > bestScore {
				best, bestScore = track, score
			}
		}
		if bestScore >= 0 {
			return Selection{
				Track:         best,
				Found:         true,
				ReferenceOnly: best.ImageBased,
			}, true
		}
	}
	return Selection{}, false
}

// usable rejects image-based tracks for reuse. Reference mode still accepts
// a forced image track so its existence can be reported, but such a pick is
// flagged ReferenceOnly and never extracted.
func usable(track Track, mode string) bool {
	if !track.ImageBased {
		return true
	}
	return mode == ModeReference && track.Forced
}

func rank(track Track, position int) float64 {
	score := 0.0
	if track.Kind == KindExternal {
		// Sibling files are operator-provided and outrank embedded streams.
		score += 100
	}
	if !track.Forced {
		// Forced tracks carry signs only, not full dialogue.
		score += 50
	}
	if track.Default {
		score += 10
	}
	return score - float64(position)*0.1
}
