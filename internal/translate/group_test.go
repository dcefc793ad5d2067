package translate

import (
	"testing"

	"subweave/internal/subtitles"
)

func TestBuildItemsGroupsContinuedSentence(t *testing.T) {
	cues := []subtitles.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "今日は天気が"},
		{Index: 2, StartMS: 1200, EndMS: 2200, Text: "いいですね。"},
		{Index: 3, StartMS: 2500, EndMS: 3500, Text: "海に行きましょう。"},
	}
	items, groups := BuildItems(cues, "ja", 600)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}
	if items[0].GroupID != items[1].GroupID {
		t.Error("continued sentence must share a group")
	}
	if items[2].GroupID == items[1].GroupID {
		t.Error("terminal sentence must close the group")
	}
	if groups[0].FullTextSrc != "今日は天気がいいですね。" {
		t.Errorf("CJK join must not insert spaces: %q", groups[0].FullTextSrc)
	}
}

func TestBuildItemsLargeGapSplits(t *testing.T) {
	cues := []subtitles.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "今日は天気が"},
		{Index: 2, StartMS: 3000, EndMS: 4000, Text: "いいですね。"},
	}
	_, groups := BuildItems(cues, "ja", 600)
	if len(groups) != 2 {
		t.Fatalf("gap beyond threshold must split groups, got %d", len(groups))
	}
}

func TestBuildItemsShortFragmentJoinsAfterTerminal(t *testing.T) {
	cues := []subtitles.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "行くぞ。"},
		{Index: 2, StartMS: 1100, EndMS: 1500, Text: "おう"},
	}
	_, groups := BuildItems(cues, "ja", 600)
	if len(groups) != 1 {
		t.Fatalf("short fragment after terminal must still join, got %d groups", len(groups))
	}
}

func TestBuildItemsLatinFamily(t *testing.T) {
	cues := []subtitles.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "I was thinking we could"},
		{Index: 2, StartMS: 1200, EndMS: 2200, Text: "go to the beach today."},
		{Index: 3, StartMS: 2400, EndMS: 3400, Text: "Sounds like a wonderful plan to me."},
	}
	items, groups := BuildItems(cues, "en", 600)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}
	if groups[0].FullTextSrc != "I was thinking we could go to the beach today." {
		t.Errorf("Latin join must use spaces: %q", groups[0].FullTextSrc)
	}
	if items[1].PrevText != "I was thinking we could" || items[1].NextText != "Sounds like a wonderful plan to me." {
		t.Errorf("neighbour context wrong: %+v", items[1])
	}
}
