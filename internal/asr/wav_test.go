package asr

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestWAV(t *testing.T, dir string, seconds float64) string {
	t.Helper()
	sampleRate := 16000
	frames := int(seconds * float64(sampleRate))
	pcm := make([]byte, frames*2) // mono 16-bit
	path := filepath.Join(dir, "audio.wav")
	if err := WriteWAV(path, sampleRate, 1, 16, pcm); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return path
}

func TestReadWAVRoundTrip(t *testing.T) {
	path := writeTestWAV(t, t.TempDir(), 1.0)
	w, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if w.SampleRate != 16000 || w.Channels != 1 || w.BitsPerSample != 16 {
		t.Errorf("format = %d Hz %dch %dbit", w.SampleRate, w.Channels, w.BitsPerSample)
	}
	if w.DurationMS() != 1000 {
		t.Errorf("duration = %dms, want 1000", w.DurationMS())
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAV(path); err == nil {
		t.Fatal("expected error for non-WAV data")
	}
}

func TestSplitWAVByDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, 1.0)

	chunks, err := SplitWAVByDuration(path, filepath.Join(dir, "chunks"), 0.4, 100)
	if err != nil {
		t.Fatalf("SplitWAVByDuration: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].OffsetMS != 0 {
		t.Errorf("first offset = %d, want 0", chunks[0].OffsetMS)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].OffsetMS <= chunks[i-1].OffsetMS {
			t.Errorf("offsets not ascending: %d then %d", chunks[i-1].OffsetMS, chunks[i].OffsetMS)
		}
		// Consecutive chunks share the configured overlap.
		prevEnd := chunks[i-1].OffsetMS + chunks[i-1].DurationMS
		if chunks[i].OffsetMS != prevEnd-100 {
			t.Errorf("chunk %d offset = %d, want %d", i, chunks[i].OffsetMS, prevEnd-100)
		}
	}
	last := chunks[len(chunks)-1]
	if last.OffsetMS+last.DurationMS != 1000 {
		t.Errorf("last chunk ends at %d, want 1000", last.OffsetMS+last.DurationMS)
	}
	for _, chunk := range chunks {
		w, err := ReadWAV(chunk.Path)
		if err != nil {
			t.Fatalf("chunk %s unreadable: %v", chunk.Path, err)
		}
		if w.DurationMS() != chunk.DurationMS {
			t.Errorf("chunk duration = %dms, want %dms", w.DurationMS(), chunk.DurationMS)
		}
	}
}

func TestSplitWAVRejectsOverlapLongerThanChunk(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, 1.0)
	if _, err := SplitWAVByDuration(path, dir, 0.4, 400); err == nil {
		t.Fatal("expected error when overlap consumes the whole chunk")
	}
}

func TestChooseRealtimeChunkSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     float64
	}{
		{"short feature clamps to min", 600, 300},
		{"long feature clamps to max", 20000, 900},
		{"mid feature targets chunk count", 4800, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChooseRealtimeChunkSeconds(tt.duration, 300, 900, 12)
			if got != tt.want {
				t.Errorf("ChooseRealtimeChunkSeconds(%v) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}
