package asr

import (
	"testing"

	"subweave/internal/segmenter"
)

func TestStitchDropsOverlapDuplicates(t *testing.T) {
	// Two 2s chunks overlapping by 500ms: chunk 2 re-hears cue B entirely
	// inside the overlap tail, plus the new cue C.
	chunks := []Chunk{
		{OffsetMS: 0, DurationMS: 2000},
		{OffsetMS: 1500, DurationMS: 2000},
	}
	perChunk := [][]segmenter.Sentence{
		{
			{StartMS: 0, EndMS: 900, Text: "A"},
			{StartMS: 1600, EndMS: 1950, Text: "B"},
		},
		{
			{StartMS: 100, EndMS: 450, Text: "B2"}, // 1600..1950 absolute
			{StartMS: 600, EndMS: 1800, Text: "C"}, // 2100..3300 absolute
		},
	}

	got := Stitch(chunks, perChunk)
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(got), got)
	}
	wantTexts := []string{"A", "B", "C"}
	for i, want := range wantTexts {
		if got[i].Text != want {
			t.Errorf("sentence %d = %q, want %q", i, got[i].Text, want)
		}
	}
	if got[2].StartMS != 2100 || got[2].EndMS != 3300 {
		t.Errorf("C timing = %d..%d, want 2100..3300", got[2].StartMS, got[2].EndMS)
	}
}

func TestStitchShiftsWordTimings(t *testing.T) {
	chunks := []Chunk{{OffsetMS: 1000, DurationMS: 2000}}
	perChunk := [][]segmenter.Sentence{
		{
			{
				StartMS: 0, EndMS: 500, Text: "hi",
				Words: []segmenter.Word{{StartMS: 0, EndMS: 500, Text: "hi"}},
			},
		},
	}
	got := Stitch(chunks, perChunk)
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(got))
	}
	if got[0].StartMS != 1000 || got[0].Words[0].StartMS != 1000 {
		t.Errorf("offsets not applied: sentence %d, word %d", got[0].StartMS, got[0].Words[0].StartMS)
	}
}

func TestStitchDedupesIdenticalSpansPreferringKana(t *testing.T) {
	chunks := []Chunk{{OffsetMS: 0, DurationMS: 2000}}
	perChunk := [][]segmenter.Sentence{
		{
			{StartMS: 0, EndMS: 1000, Text: "今日"},
			{StartMS: 0, EndMS: 1000, Text: "今日は"},
			{StartMS: 1000, EndMS: 2000, Text: "next"},
		},
	}
	got := Stitch(chunks, perChunk)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(got), got)
	}
	if got[0].Text != "今日は" {
		t.Errorf("kana reading must win, got %q", got[0].Text)
	}
}
