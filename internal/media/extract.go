package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"subweave/internal/services"
)

// CommandRunner executes an external command and returns its combined
// output. Tests substitute a fake; production uses exec.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Extractor shells out to ffmpeg for stream extraction.
type Extractor struct {
	FFmpeg string
	Run    CommandRunner
}

// NewExtractor returns an Extractor bound to the given ffmpeg binary
// ("ffmpeg" when empty).
func NewExtractor(ffmpegBinary string) *Extractor {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{FFmpeg: binary, Run: execRunner}
}

// ExtractAudioWAV decodes one audio stream to a mono 16-bit PCM WAV at the
// given sample rate, the input format recognition backends expect.
func (e *Extractor) ExtractAudioWAV(ctx context.Context, videoPath string, audioIndex, sampleRate int, outPath string) error {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", videoPath,
		"-map", fmt.Sprintf("0:a:%d", audioIndex),
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-c:a", "pcm_s16le",
		"-vn", "-sn",
		outPath,
	}
	if output, err := e.run(ctx, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "asr_prepare", "extract audio",
			fmt.Sprintf("ffmpeg audio extraction failed: %s", firstLine(output)), err)
	}
	return nil
}

// ExtractSubtitleSRT converts one embedded text subtitle stream to SRT.
func (e *Extractor) ExtractSubtitleSRT(ctx context.Context, videoPath string, subtitleIndex int, outPath string) error {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", videoPath,
		"-map", fmt.Sprintf("0:s:%d", subtitleIndex),
		"-c:s", "srt",
		outPath,
	}
	if output, err := e.run(ctx, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "subtitle_select", "extract subtitle",
			fmt.Sprintf("ffmpeg subtitle extraction failed: %s", firstLine(output)), err)
	}
	return nil
}

func (e *Extractor) run(ctx context.Context, args []string) ([]byte, error) {
	runner := e.Run
	if runner == nil {
		runner = execRunner
	}
	return runner(ctx, e.FFmpeg, args...)
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}
