package subtitles

import "testing"

func TestBuildBilingual(t *testing.T) {
	source := []Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "こんにちは"},
		{Index: 2, StartMS: 1000, EndMS: 2000, Text: "世界"},
	}
	translated := []Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "你好"},
		{Index: 2, StartMS: 1000, EndMS: 2000, Text: ""},
	}

	got := BuildBilingual(source, translated)
	if len(got) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(got))
	}
	if got[0].Text != "你好\nこんにちは" {
		t.Errorf("cue 1 text = %q", got[0].Text)
	}
	// Missing translation falls back to the source line alone.
	if got[1].Text != "世界" {
		t.Errorf("cue 2 text = %q", got[1].Text)
	}
	if got[0].StartMS != 0 || got[1].EndMS != 2000 {
		t.Error("timing must be carried from the source cues")
	}
}
