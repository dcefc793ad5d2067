package asrcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"subweave/internal/asr"
	"subweave/internal/config"
	"subweave/internal/hotwords"
	langpkg "subweave/internal/language"
	"subweave/internal/segmenter"
	"subweave/internal/services"
)

// Service runs a local transcription command. It implements asr.Recognizer.
type Service struct {
	command       string
	baseArgs      []string
	model         string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService builds a command recognizer from the ASR config. The command
// string may carry leading arguments ("whisper-cli --threads 4").
func NewService(cfg config.ASR) (*Service, error) {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "asr_call", "command backend", "asr.command is empty", nil)
	}
	return &Service{
		command:  fields[0],
		baseArgs: fields[1:],
		model:    cfg.Model,
	}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// Name identifies the backend in logs and failure records.
func (s *Service) Name() string { return "command" }

// Recognize transcribes a WAV file by invoking the configured command and
// parsing its stdout JSON.
func (s *Service) Recognize(ctx context.Context, wavPath string, opts asr.Options) ([]segmenter.Sentence, error) {
	args := append([]string(nil), s.baseArgs...)
	if s.model != "" {
		args = append(args, "--model", s.model)
	}
	if lang := langpkg.ToISO2(opts.Language); lang != "" && opts.Language != langpkg.Auto {
		args = append(args, "--language", lang)
	}
	if len(opts.Hotwords) > 0 {
		hotwordPath, cleanup, err := writeHotwordFile(wavPath, opts.Hotwords)
		if err != nil {
			return nil, fmt.Errorf("write hotword file: %w", err)
		}
		defer cleanup()
		args = append(args, "--hotwords", hotwordPath)
	}
	args = append(args, "--output-format", "json", wavPath)

	output, err := s.run(ctx, s.command, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", "command backend",
			fmt.Sprintf("%s failed", s.command), err)
	}
	sentences, err := parseTranscript(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", "command backend",
			"unparseable transcript output", err)
	}
	return sentences, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// writeHotwordFile materializes the hotword list next to the audio, one
// term per line. Local commands take a flat list; weights stay cloud-only.
func writeHotwordFile(wavPath string, entries []hotwords.Entry) (string, func(), error) {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Text)
		b.WriteByte('\n')
	}
	path := filepath.Join(filepath.Dir(wavPath), "hotwords.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

// parseTranscript decodes whisper-style JSON: a segments array with float
// second timings and optional word timings.
func parseTranscript(output []byte) ([]segmenter.Sentence, error) {
	var payload struct {
		Segments []struct {
			Text  string  `json:"text"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Words []struct {
				Word  string  `json:"word"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			} `json:"words"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, err
	}
	sentences := make([]segmenter.Sentence, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		sentence := segmenter.Sentence{
			StartMS: secondsToMS(seg.Start),
			EndMS:   secondsToMS(seg.End),
			Text:    text,
		}
		for _, w := range seg.Words {
			word := strings.TrimSpace(w.Word)
			if word == "" {
				continue
			}
			sentence.Words = append(sentence.Words, segmenter.Word{
				StartMS: secondsToMS(w.Start),
				EndMS:   secondsToMS(w.End),
				Text:    word,
			})
		}
		sentences = append(sentences, sentence)
	}
	return sentences, nil
}

func secondsToMS(seconds float64) int64 {
	return int64(seconds*1000 + 0.5)
}
