package translate

import (
	"errors"
	"strings"
	"testing"
)

func TestParseNumberedStripsPrefixes(t *testing.T) {
	response := "[1] 你好\n[2] 世界\n\n[3] 再见"
	lines, err := parseNumbered(response, 3)
	if err != nil {
		t.Fatalf("parseNumbered: %v", err)
	}
	want := []string{"你好", "世界", "再见"}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestParseNumberedCountMismatch(t *testing.T) {
	_, err := parseNumbered("[1] only one", 2)
	var lc *lineCountError
	if !errors.As(err, &lc) {
		t.Fatalf("expected line count error, got %v", err)
	}
	if lc.want != 2 || lc.got != 1 {
		t.Errorf("counts = %d/%d", lc.got, lc.want)
	}
}

func TestParseSingleLine(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{"plain", "你好", "你好", false},
		{"stray numbering", "[1] 你好", "你好", false},
		{"wrapping quotes", `"你好"`, "你好", false},
		{"cjk quotes", "「你好」", "你好", false},
		{"trailing blank lines", "你好\n\n", "你好", false},
		{"multiple lines", "你好\n世界", "", true},
		{"empty", "  \n ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSingleLine(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSingleLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBulkPromptNumbersItems(t *testing.T) {
	items := []Item{{CurText: "hello"}, {CurText: "world"}}
	prompt := bulkPrompt(items)
	if prompt != "[1] hello\n[2] world" {
		t.Errorf("bulkPrompt = %q", prompt)
	}
}

func TestContextPromptIncludesNeighbours(t *testing.T) {
	item := Item{
		CurText:  "いいですね。",
		PrevText: "今日は天気が",
		NextText: "海に行きましょう。",
		FullText: "今日は天気がいいですね。",
	}
	prompt := contextPrompt(item)
	for _, want := range []string{"Full sentence context:", "Previous line:", "Next line:", "CURRENT line:\nいいですね。"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
