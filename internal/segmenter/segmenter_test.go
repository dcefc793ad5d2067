package segmenter

import (
	"strings"
	"testing"
)

func postSettings() Settings {
	return Settings{
		Mode:          "post",
		MaxDurationMS: 3500,
		MaxChars:      25,
		MinDurationMS: 1000,
		MinChars:      2,
		MergeGapMS:    200,
	}
}

func TestSegmentMergesShortFragmentIntoNext(t *testing.T) {
	sentences := []Sentence{
		{StartMS: 0, EndMS: 400, Text: "あ"},
		{StartMS: 450, EndMS: 2000, Text: "こんにちは"},
	}

	cues := Segment(sentences, postSettings())
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d: %+v", len(cues), cues)
	}
	if cues[0].StartMS != 0 || cues[0].EndMS != 2000 {
		t.Errorf("timing = %d..%d, want 0..2000", cues[0].StartMS, cues[0].EndMS)
	}
	// CJK fragments join without a separator.
	if cues[0].Text != "あこんにちは" {
		t.Errorf("text = %q, want あこんにちは", cues[0].Text)
	}
	if cues[0].Index != 1 {
		t.Errorf("index = %d, want 1", cues[0].Index)
	}
}

func TestSegmentKeepsFragmentsAcrossLargeGap(t *testing.T) {
	sentences := []Sentence{
		{StartMS: 0, EndMS: 400, Text: "あ"},
		{StartMS: 2000, EndMS: 4000, Text: "こんにちは"},
	}
	cues := Segment(sentences, postSettings())
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
}

func TestSegmentAutoRebuildsSentencesAtPunctuation(t *testing.T) {
	words := []Word{
		{StartMS: 0, EndMS: 200, Text: "こ"},
		{StartMS: 200, EndMS: 400, Text: "ん"},
		{StartMS: 400, EndMS: 600, Text: "に"},
		{StartMS: 600, EndMS: 800, Text: "ち"},
		{StartMS: 800, EndMS: 1100, Text: "は。"},
		{StartMS: 1200, EndMS: 2400, Text: "世界"},
	}
	settings := postSettings()
	settings.Mode = "auto"
	settings.MinDurationMS = 0
	settings.MinChars = 0

	cues := Segment([]Sentence{{StartMS: 0, EndMS: 2400, Text: "ignored", Words: words}}, settings)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "こんにちは。" {
		t.Errorf("cue 1 text = %q", cues[0].Text)
	}
	if cues[1].Text != "世界" {
		t.Errorf("cue 2 text = %q", cues[1].Text)
	}
	if cues[1].StartMS != 1200 {
		t.Errorf("cue 2 start = %d, want 1200", cues[1].StartMS)
	}
}

func TestSegmentSplitsLongSentenceByWords(t *testing.T) {
	words := []Word{
		{StartMS: 0, EndMS: 1000, Text: "one"},
		{StartMS: 1000, EndMS: 2000, Text: "two"},
		{StartMS: 2000, EndMS: 3000, Text: "three"},
		{StartMS: 3000, EndMS: 5000, Text: "four"},
	}
	sentence := Sentence{StartMS: 0, EndMS: 5000, Text: "one two three four", Words: words}
	settings := postSettings()
	settings.MinDurationMS = 0
	settings.MinChars = 0
	settings.MaxDurationMS = 2500

	cues := Segment([]Sentence{sentence}, settings)
	if len(cues) < 2 {
		t.Fatalf("expected split, got %+v", cues)
	}
	for _, cue := range cues {
		if cue.EndMS-cue.StartMS > 2500 {
			t.Errorf("cue %q duration %dms exceeds cap", cue.Text, cue.EndMS-cue.StartMS)
		}
	}
	joined := make([]string, 0, len(cues))
	for _, cue := range cues {
		joined = append(joined, cue.Text)
	}
	if strings.Join(joined, " ") != "one two three four" {
		t.Errorf("words lost: %v", joined)
	}
}

func TestSegmentSplitsLongTextWithoutWords(t *testing.T) {
	text := strings.Repeat("长", 60)
	sentence := Sentence{StartMS: 0, EndMS: 6000, Text: text}
	settings := postSettings()
	settings.MinChars = 0
	settings.MinDurationMS = 0

	cues := Segment([]Sentence{sentence}, settings)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues of <=25 chars, got %d", len(cues))
	}
	if cues[0].StartMS != 0 || cues[len(cues)-1].EndMS != 6000 {
		t.Error("split must preserve the overall time span")
	}
	var total string
	for _, cue := range cues {
		total += cue.Text
	}
	if total != text {
		t.Error("characters lost in split")
	}
}

func TestJoinText(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"こんにちは", "世界", "こんにちは世界"},
		{"hello", "world", "hello world"},
		{"hello", "世界", "hello世界"},
		{"", "x", "x"},
		{"x", "", "x"},
	}
	for _, tt := range tests {
		if got := JoinText(tt.a, tt.b); got != tt.want {
			t.Errorf("JoinText(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBuildFromWordsBreaksAtLongPause(t *testing.T) {
	words := []Word{
		{StartMS: 0, EndMS: 500, Text: "first"},
		{StartMS: 3000, EndMS: 3500, Text: "second"},
	}
	sentences := BuildFromWords(words)
	if len(sentences) != 2 {
		t.Fatalf("expected pause break, got %+v", sentences)
	}
}
