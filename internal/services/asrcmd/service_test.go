package asrcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subweave/internal/asr"
	"subweave/internal/config"
	"subweave/internal/hotwords"
	"subweave/internal/services"
)

const sampleTranscript = `{
  "segments": [
    {"text": " こんにちは。", "start": 0.0, "end": 1.2,
     "words": [{"word": "こんにちは。", "start": 0.0, "end": 1.2}]},
    {"text": "", "start": 1.2, "end": 1.5},
    {"text": "world", "start": 1.5, "end": 2.0}
  ]
}`

func TestRecognizeParsesTranscript(t *testing.T) {
	svc, err := NewService(config.ASR{Command: "whisper-cli --threads 4", Model: "small"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte(sampleTranscript), nil
	})

	wavPath := filepath.Join(t.TempDir(), "audio.wav")
	sentences, err := svc.Recognize(context.Background(), wavPath, asr.Options{Language: "ja"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences (empty skipped), got %d", len(sentences))
	}
	if sentences[0].Text != "こんにちは。" || sentences[0].StartMS != 0 || sentences[0].EndMS != 1200 {
		t.Errorf("unexpected first sentence: %+v", sentences[0])
	}
	if len(sentences[0].Words) != 1 || sentences[0].Words[0].EndMS != 1200 {
		t.Errorf("word timings not converted: %+v", sentences[0].Words)
	}

	if gotName != "whisper-cli" {
		t.Errorf("command = %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--threads 4", "--model small", "--language ja", "--output-format json", wavPath} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, gotArgs)
		}
	}
}

func TestRecognizeWritesHotwordFile(t *testing.T) {
	svc, err := NewService(config.ASR{Command: "whisper-cli"})
	if err != nil {
		t.Fatal(err)
	}

	var hotwordPath string
	svc.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		for i, arg := range args {
			if arg == "--hotwords" && i+1 < len(args) {
				hotwordPath = args[i+1]
			}
		}
		if hotwordPath != "" {
			data, err := os.ReadFile(hotwordPath)
			if err != nil {
				return nil, err
			}
			if string(data) != "Luffy\nOne Piece\n" {
				return nil, errors.New("unexpected hotword file content: " + string(data))
			}
		}
		return []byte(`{"segments": []}`), nil
	})

	wavPath := filepath.Join(t.TempDir(), "audio.wav")
	entries := []hotwords.Entry{{Text: "Luffy", Weight: 4}, {Text: "One Piece", Weight: 4}}
	if _, err := svc.Recognize(context.Background(), wavPath, asr.Options{Hotwords: entries}); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if hotwordPath == "" {
		t.Fatal("hotword file flag not passed")
	}
	if _, err := os.Stat(hotwordPath); !os.IsNotExist(err) {
		t.Errorf("hotword file not cleaned up: %v", err)
	}
}

func TestRecognizeWrapsCommandFailure(t *testing.T) {
	svc, err := NewService(config.ASR{Command: "whisper-cli"})
	if err != nil {
		t.Fatal(err)
	}
	svc.WithCommandRunner(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("exit status 1: model not found")
	})
	_, err = svc.Recognize(context.Background(), "audio.wav", asr.Options{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("expected ErrExternalTool, got %v", err)
	}
}

func TestRecognizeRejectsGarbageOutput(t *testing.T) {
	svc, err := NewService(config.ASR{Command: "whisper-cli"})
	if err != nil {
		t.Fatal(err)
	}
	svc.WithCommandRunner(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("loading model...\n"), nil
	})
	_, err = svc.Recognize(context.Background(), "audio.wav", asr.Options{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("expected ErrExternalTool, got %v", err)
	}
}

func TestNewServiceRequiresCommand(t *testing.T) {
	if _, err := NewService(config.ASR{}); !errors.Is(err, services.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
