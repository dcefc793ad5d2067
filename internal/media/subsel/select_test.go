package subsel

import (
	"os"
	"path/filepath"
	"testing"

	"subweave/internal/media"
)

func TestSelectPrefersTargetLanguage(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "ja", SubtitleIndex: 0},
		{Kind: KindEmbedded, Language: "zh", SubtitleIndex: 1},
	}
	sel := Select(tracks, Options{
		Mode:        ModeReuseIfGood,
		TargetLangs: []string{"zh"},
		SourceLangs: []string{"ja"},
	})
	if !sel.Found || !sel.TargetMatch {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.Track.Language != "zh" {
		t.Fatalf("language = %q, want zh", sel.Track.Language)
	}
}

func TestSelectFallsBackToSourceLanguage(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "ja", SubtitleIndex: 0},
		{Kind: KindEmbedded, Language: "en", SubtitleIndex: 1},
	}
	sel := Select(tracks, Options{
		Mode:        ModeReuseIfGood,
		TargetLangs: []string{"zh"},
		SourceLangs: []string{"ja", "en"},
	})
	if !sel.Found || sel.TargetMatch {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.Track.Language != "ja" {
		t.Fatalf("language = %q, want ja", sel.Track.Language)
	}
}

func TestSelectIgnoreMode(t *testing.T) {
	tracks := []Track{{Kind: KindEmbedded, Language: "zh"}}
	if sel := Select(tracks, Options{Mode: ModeIgnore, TargetLangs: []string{"zh"}}); sel.Found {
		t.Fatalf("ignore mode must not select, got %+v", sel)
	}
}

func TestSelectRejectsImageBasedForReuse(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "zh", ImageBased: true, Forced: true},
	}
	sel := Select(tracks, Options{Mode: ModeReuseIfGood, TargetLangs: []string{"zh"}})
	if sel.Found {
		t.Fatalf("image track selected for reuse: %+v", sel)
	}
}

func TestSelectForcedImageInReferenceMode(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "zh", ImageBased: true, Forced: true},
	}
	sel := Select(tracks, Options{Mode: ModeReference, TargetLangs: []string{"zh"}})
	if !sel.Found || !sel.ReferenceOnly {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.TargetMatch {
		t.Fatal("reference-only pick must not count as a target match")
	}
}

func TestSelectExternalOutranksEmbedded(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "zh", SubtitleIndex: 0, Default: true},
		{Kind: KindExternal, Language: "zh", Path: "/in/movie.zh.srt"},
	}
	sel := Select(tracks, Options{Mode: ModeReuseIfGood, TargetLangs: []string{"zh"}})
	if !sel.Found || sel.Track.Kind != KindExternal {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestSelectPrefersFullDialogueOverForced(t *testing.T) {
	tracks := []Track{
		{Kind: KindEmbedded, Language: "ja", SubtitleIndex: 0, Forced: true},
		{Kind: KindEmbedded, Language: "ja", SubtitleIndex: 1},
	}
	sel := Select(tracks, Options{Mode: ModeReuseIfGood, SourceLangs: []string{"ja"}})
	if !sel.Found || sel.Track.SubtitleIndex != 1 {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestFromProbe(t *testing.T) {
	converted := FromProbe([]media.SubtitleTrack{
		{SubtitleIndex: 0, Language: "ja", Codec: "subrip"},
		{SubtitleIndex: 1, Codec: "hdmv_pgs_subtitle", ImageBased: true},
	})
	if len(converted) != 2 {
		t.Fatalf("converted = %d tracks", len(converted))
	}
	if converted[0].Kind != KindEmbedded || converted[0].Language != "ja" {
		t.Fatalf("track 0 = %+v", converted[0])
	}
	if !converted[1].ImageBased {
		t.Fatalf("track 1 = %+v", converted[1])
	}
}

func TestScanSiblings(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	for _, name := range []string{"movie.mkv", "movie.srt", "movie.ja.ass", "movie.zh.srt", "other.srt", "movie.notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tracks := ScanSiblings(video)
	if len(tracks) != 3 {
		t.Fatalf("tracks = %+v", tracks)
	}
	byBase := map[string]Track{}
	for _, track := range tracks {
		byBase[filepath.Base(track.Path)] = track
		if track.Kind != KindExternal {
			t.Fatalf("kind = %q", track.Kind)
		}
	}
	if track := byBase["movie.srt"]; track.Language != "" {
		t.Fatalf("bare sibling language = %q", track.Language)
	}
	if track := byBase["movie.ja.ass"]; track.Language != "ja" {
		t.Fatalf("ja sibling = %+v", track)
	}
	if track := byBase["movie.zh.srt"]; track.Language != "zh" {
		t.Fatalf("zh sibling = %+v", track)
	}
}
