package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
こんにちは

2
00:00:03,000 --> 00:00:04,000
世界
`

func TestParseSRT(t *testing.T) {
	cues, err := ParseSRT(sampleSRT)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].StartMS != 1000 || cues[0].EndMS != 2500 {
		t.Errorf("cue 1 timing = %d..%d, want 1000..2500", cues[0].StartMS, cues[0].EndMS)
	}
	if cues[0].Text != "こんにちは" {
		t.Errorf("cue 1 text = %q", cues[0].Text)
	}
	if cues[1].Index != 2 {
		t.Errorf("cue 2 index = %d, want 2", cues[1].Index)
	}
}

func TestParseSRTToleratesPeriodMillisAndMissingIndex(t *testing.T) {
	content := "00:00:01.000 --> 00:00:02.000\nhello\n\n00:01:00,500 --> 00:01:02,000\nworld\n"
	cues, err := ParseSRT(content)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].StartMS != 1000 {
		t.Errorf("start = %d, want 1000", cues[0].StartMS)
	}
	if cues[1].StartMS != 60500 {
		t.Errorf("start = %d, want 60500", cues[1].StartMS)
	}
}

func TestParseSRTStripsLeadingBOM(t *testing.T) {
	cues, err := ParseSRT("\uFEFF" + sampleSRT)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "こんにちは" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestParseSRTRejectsGarbageTiming(t *testing.T) {
	if _, err := ParseSRT("1\nnot a timestamp\ntext\n"); err == nil {
		t.Fatal("expected error for invalid timing line")
	}
}

func TestParseSRTSkipsEmptyBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nhello\n\n\n\n2\n00:00:03,000 --> 00:00:04,000\n\n"
	cues, err := ParseSRT(content)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected textless block to be skipped, got %d cues", len(cues))
	}
}

func TestFormatSRTRoundTrip(t *testing.T) {
	cues, err := ParseSRT(sampleSRT)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	formatted := FormatSRT(cues)
	again, err := ParseSRT(formatted)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again) != len(cues) {
		t.Fatalf("round trip cue count = %d, want %d", len(again), len(cues))
	}
	for i := range cues {
		if again[i] != cues[i] {
			t.Errorf("cue %d mismatch: %+v vs %+v", i, again[i], cues[i])
		}
	}
	if !strings.Contains(formatted, "00:00:01,000 --> 00:00:02,500") {
		t.Errorf("unexpected timing format in %q", formatted)
	}
}

func TestWriteSRTFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{{Index: 1, StartMS: 0, EndMS: 1000, Text: "hi"}}
	if err := WriteSRTFile(path, cues); err != nil {
		t.Fatalf("WriteSRTFile: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
	got, err := ParseSRTFile(path)
	if err != nil {
		t.Fatalf("ParseSRTFile: %v", err)
	}
	if len(got) != 1 || got[0].Text != "hi" {
		t.Fatalf("unexpected cues: %+v", got)
	}
}

func TestDecodeTextHandlesBOMAndGBK(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("plain")...)
	text, err := DecodeText(withBOM)
	if err != nil {
		t.Fatalf("DecodeText(bom): %v", err)
	}
	if text != "plain" {
		t.Errorf("bom text = %q", text)
	}

	// 你好 in GBK.
	gbk := []byte{0xC4, 0xE3, 0xBA, 0xC3}
	text, err = DecodeText(gbk)
	if err != nil {
		t.Fatalf("DecodeText(gbk): %v", err)
	}
	if text != "你好" {
		t.Errorf("gbk text = %q, want 你好", text)
	}
}

func TestOpenExternalASS(t *testing.T) {
	content := `[Script Info]
ScriptType: v4.00+

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:02.50,Default,,0,0,0,,Hello there
`
	path := filepath.Join(t.TempDir(), "sample.ass")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cues, err := OpenExternal(path)
	if err != nil {
		t.Fatalf("OpenExternal: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].StartMS != 1000 || cues[0].EndMS != 2500 {
		t.Errorf("timing = %d..%d, want 1000..2500", cues[0].StartMS, cues[0].EndMS)
	}
	if cues[0].Text != "Hello there" {
		t.Errorf("text = %q", cues[0].Text)
	}
}

func TestIsSubtitleFile(t *testing.T) {
	if !IsSubtitleFile("/x/a.SRT") || !IsSubtitleFile("a.ass") {
		t.Error("expected srt/ass to be recognized")
	}
	if IsSubtitleFile("a.mkv") {
		t.Error("mkv is not a subtitle")
	}
}
