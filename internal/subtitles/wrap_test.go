package subtitles

import (
	"strings"
	"testing"

	"github.com/rivo/uniseg"
)

func TestWrapTextLatinWordBoundaries(t *testing.T) {
	got := WrapText("the quick brown fox jumps over the lazy dog", 15)
	for _, line := range strings.Split(got, "\n") {
		if uniseg.GraphemeClusterCount(line) > 15 {
			t.Errorf("line %q exceeds 15 chars", line)
		}
		if strings.HasPrefix(line, " ") || strings.HasSuffix(line, " ") {
			t.Errorf("line %q has edge whitespace", line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("words lost or reordered: %q", got)
	}
}

func TestWrapTextCJKBreaksAtLimit(t *testing.T) {
	text := "这是一个非常长的中文字幕行需要换行处理"
	got := WrapText(text, 8)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", got)
	}
	for _, line := range lines {
		if uniseg.GraphemeClusterCount(line) > 8 {
			t.Errorf("line %q exceeds 8 chars", line)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != text {
		t.Errorf("characters lost: %q", got)
	}
}

func TestWrapTextShortLineUntouched(t *testing.T) {
	if got := WrapText("short", 25); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestWrapTextDisabled(t *testing.T) {
	long := strings.Repeat("x", 100)
	if got := WrapText(long, 0); got != long {
		t.Error("maxChars 0 must disable wrapping")
	}
}

func TestWrapTextPreservesExistingBreaks(t *testing.T) {
	got := WrapText("line one\nline two", 25)
	if got != "line one\nline two" {
		t.Errorf("got %q", got)
	}
}
