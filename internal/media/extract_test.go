package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"subweave/internal/services"
)

func TestExtractAudioWAVBuildsExpectedCommand(t *testing.T) {
	var gotName string
	var gotArgs []string
	e := NewExtractor("ffmpeg-test")
	e.Run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	}

	if err := e.ExtractAudioWAV(context.Background(), "/in/movie.mkv", 1, 16000, "/tmp/out.wav"); err != nil {
		t.Fatalf("ExtractAudioWAV: %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Errorf("binary = %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-map 0:a:1", "-ac 1", "-ar 16000", "-c:a pcm_s16le", "/tmp/out.wav"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestExtractSubtitleSRTBuildsExpectedCommand(t *testing.T) {
	var gotArgs []string
	e := NewExtractor("")
	e.Run = func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}

	if err := e.ExtractSubtitleSRT(context.Background(), "/in/movie.mkv", 0, "/tmp/out.srt"); err != nil {
		t.Fatalf("ExtractSubtitleSRT: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-map 0:s:0", "-c:s srt", "/tmp/out.srt"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestExtractAudioWAVWrapsFailure(t *testing.T) {
	e := NewExtractor("")
	e.Run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("boom: no such stream\nmore detail"), errors.New("exit status 1")
	}

	err := e.ExtractAudioWAV(context.Background(), "/in/movie.mkv", 0, 0, "/tmp/out.wav")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom: no such stream") {
		t.Errorf("expected first output line in error, got %v", err)
	}
}
