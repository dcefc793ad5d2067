package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subweave/internal/asr"
	"subweave/internal/config"
	"subweave/internal/jobfiles"
	"subweave/internal/media"
	"subweave/internal/media/ffprobe"
	"subweave/internal/segmenter"
	"subweave/internal/subtitles"
	"subweave/internal/translate"
)

type fakeProber struct {
	probe media.Probe
	err   error
}

func (f fakeProber) Inspect(_ context.Context, path string) (media.Probe, error) {
	if f.err != nil {
		return media.Probe{}, f.err
	}
	probe := f.probe
	probe.Path = path
	return probe, nil
}

type fakeAudioExtractor struct {
	calls int
}

func (f *fakeAudioExtractor) ExtractAudioWAV(_ context.Context, _ string, _, _ int, outPath string) error {
	f.calls++
	return os.WriteFile(outPath, []byte("RIFF"), 0o644)
}

type fakeSubtitleExtractor struct {
	content string
}

func (f *fakeSubtitleExtractor) ExtractSubtitleSRT(_ context.Context, _ string, _ int, outPath string) error {
	return os.WriteFile(outPath, []byte(f.content), 0o644)
}

type fakeRecognizer struct {
	t         *testing.T
	sentences []segmenter.Sentence
	err       error
	calls     int
	forbidden bool
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ string, _ asr.Options) ([]segmenter.Sentence, error) {
	if f.forbidden {
		f.t.Fatal("recognizer must not be called")
	}
	f.calls++
	return f.sentences, f.err
}

type fakeTranslator struct {
	t         *testing.T
	text      string
	fallbacks []int
	calls     int
	forbidden bool
}

func (f *fakeTranslator) Translate(_ context.Context, cues []subtitles.Cue, _, _ string) (*translate.Result, error) {
	if f.forbidden {
		f.t.Fatal("translator must not be called")
	}
	f.calls++
	out := make([]subtitles.Cue, len(cues))
	for i, cue := range cues {
		out[i] = subtitles.Cue{Index: i + 1, StartMS: cue.StartMS, EndMS: cue.EndMS, Text: f.text}
	}
	return &translate.Result{Cues: out, Fallbacks: f.fallbacks}, nil
}

func (f *fakeTranslator) Polish(_ context.Context, _, translated []subtitles.Cue, _, _ string) []subtitles.Cue {
	return translated
}

func audioOnlyProbe() media.Probe {
	return media.Probe{
		DurationSeconds: 60,
		AudioStreams: []ffprobe.Stream{
			{Index: 1, CodecType: "audio", CodecName: "aac", Channels: 2, Tags: map[string]string{"language": "jpn"}},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TmpDir = t.TempDir()
	cfg.Paths.EvalDir = filepath.Join(t.TempDir(), "eval")
	cfg.Metadata.Enabled = false
	cfg.Metadata.NFOEnabled = false
	cfg.Hotwords.Enabled = false
	cfg.Eval.Collect = false
	cfg.Notifications.WebhookURL = ""
	return &cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const simplifiedSRT = "1\n00:00:01,000 --> 00:00:02,000\n这个问题很简单\n\n2\n00:00:03,000 --> 00:00:04,000\n我们开始学习这门课\n"

func TestProcessEarlyExitOnReusableTarget(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")
	writeFile(t, filepath.Join(dir, "movie.zh.srt"), simplifiedSRT)

	cfg := testConfig(t)
	recognizer := &fakeRecognizer{t: t, forbidden: true}
	translator := &fakeTranslator{t: t, forbidden: true}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	summary, err := p.Process(context.Background(), naming, jobfiles.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if !summary.EarlyExit {
		t.Fatalf("summary = %+v, want early exit", summary)
	}
	if !jobfiles.Exists(naming.DonePath()) {
		t.Fatal("done marker missing")
	}
	data, err := os.ReadFile(filepath.Join(dir, "movie.zh.srt"))
	if err != nil || string(data) != simplifiedSRT {
		t.Fatalf("target subtitle must be preserved verbatim: %v", err)
	}
}

func TestProcessIgnoreSimplifiedOverrideSkipsEarlyExit(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")
	writeFile(t, filepath.Join(dir, "movie.zh.srt"), simplifiedSRT)

	cfg := testConfig(t)
	recognizer := &fakeRecognizer{t: t, sentences: []segmenter.Sentence{
		{StartMS: 0, EndMS: 1500, Text: "こんにちは世界"},
	}}
	translator := &fakeTranslator{t: t, text: "你好世界"}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	summary, err := p.Process(context.Background(), naming, jobfiles.Overrides{IgnoreSimplifiedSubtitle: true})
	if err != nil {
		t.Fatal(err)
	}
	if summary.EarlyExit || recognizer.calls != 1 {
		t.Fatalf("summary = %+v, recognizer calls = %d", summary, recognizer.calls)
	}
	// The pre-existing target must stay intact; the new translation lands on
	// the llm path.
	data, _ := os.ReadFile(filepath.Join(dir, "movie.zh.srt"))
	if string(data) != simplifiedSRT {
		t.Fatal("pre-existing target was clobbered")
	}
	if !jobfiles.Exists(naming.LLMTranslatedSRTPath("zh")) {
		t.Fatal("llm translation output missing")
	}
}

func TestProcessRecognizeAndTranslate(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "show.S01E02.mkv")
	writeFile(t, video, "video")

	cfg := testConfig(t)
	extractor := &fakeAudioExtractor{}
	recognizer := &fakeRecognizer{t: t, sentences: []segmenter.Sentence{
		{StartMS: 0, EndMS: 1500, Text: "こんにちは"},
		{StartMS: 1800, EndMS: 3200, Text: "世界は広い"},
	}}
	translator := &fakeTranslator{t: t, text: "你好"}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    extractor,
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	summary, err := p.Process(context.Background(), naming, jobfiles.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Reused || summary.EarlyExit {
		t.Fatalf("summary = %+v", summary)
	}
	if extractor.calls != 1 || recognizer.calls != 1 || translator.calls != 1 {
		t.Fatalf("calls: extract=%d recognize=%d translate=%d",
			extractor.calls, recognizer.calls, translator.calls)
	}
	if !jobfiles.Exists(naming.SourceSRTPath()) {
		t.Fatal("source srt missing")
	}
	if !jobfiles.Exists(naming.TranslatedSRTPath("zh")) {
		t.Fatal("translated srt missing")
	}
	if !jobfiles.Exists(naming.DonePath()) {
		t.Fatal("done marker missing")
	}
	cues, err := subtitles.ParseSRTFile(naming.TranslatedSRTPath("zh"))
	if err != nil || len(cues) == 0 {
		t.Fatalf("translated srt unreadable: %v", err)
	}
	if cues[0].Text != "你好" {
		t.Fatalf("translated text = %q", cues[0].Text)
	}
}

func TestProcessReusesSourceLanguageSubtitle(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")
	jaSRT := "1\n00:00:01,000 --> 00:00:02,000\nこんにちは、世界\n\n2\n00:00:03,000 --> 00:00:04,500\n今日はいい天気ですね\n"
	writeFile(t, filepath.Join(dir, "movie.ja.srt"), jaSRT)

	cfg := testConfig(t)
	recognizer := &fakeRecognizer{t: t, forbidden: true}
	translator := &fakeTranslator{t: t, text: "你好"}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	summary, err := p.Process(context.Background(), naming, jobfiles.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Reused || summary.EarlyExit {
		t.Fatalf("summary = %+v", summary)
	}
	if translator.calls != 1 {
		t.Fatalf("translator calls = %d", translator.calls)
	}
	if !jobfiles.Exists(naming.SourceSRTPath()) {
		t.Fatal("source srt missing")
	}
}

func TestProcessRecordsASRFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")

	cfg := testConfig(t)
	recognizer := &fakeRecognizer{t: t, err: errors.New("vendor exploded")}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        &fakeTranslator{t: t},
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	if _, err := p.Process(context.Background(), naming, jobfiles.Overrides{}); err == nil {
		t.Fatal("expected recognition error")
	}

	failure, ok := jobfiles.ReadASRFailure(naming.ASRFailedPath())
	if !ok {
		t.Fatal("asr_failed marker missing")
	}
	if failure.Count != 1 || failure.Stage != "asr_call" || failure.Fatal {
		t.Fatalf("failure = %+v", failure)
	}
	if jobfiles.Exists(naming.DonePath()) {
		t.Fatal("done marker must not exist after failure")
	}
}

func TestProcessTranslateFallbacksLogged(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")

	cfg := testConfig(t)
	recognizer := &fakeRecognizer{t: t, sentences: []segmenter.Sentence{
		{StartMS: 0, EndMS: 1500, Text: "こんにちは"},
	}}
	translator := &fakeTranslator{t: t, text: "你好", fallbacks: []int{0}}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	if _, err := p.Process(context.Background(), naming, jobfiles.Overrides{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(naming.TranslateFailedLogPath("zh"))
	if err != nil {
		t.Fatalf("translate failure log missing: %v", err)
	}
	if !strings.Contains(string(data), "fell back to source text") {
		t.Fatalf("log content = %q", data)
	}
}

func TestProcessEvalModeKeepsGoingAndCollects(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	writeFile(t, video, "video")
	writeFile(t, filepath.Join(dir, "movie.zh.srt"), simplifiedSRT)

	cfg := testConfig(t)
	cfg.Eval.Collect = true
	cfg.Eval.SampleRate = 1.0
	recognizer := &fakeRecognizer{t: t, sentences: []segmenter.Sentence{
		{StartMS: 0, EndMS: 1500, Text: "こんにちは"},
	}}
	translator := &fakeTranslator{t: t, text: "你好"}
	p := New(cfg, Deps{
		Prober:            fakeProber{probe: audioOnlyProbe()},
		AudioExtractor:    &fakeAudioExtractor{},
		SubtitleExtractor: &fakeSubtitleExtractor{},
		Recognizer:        recognizer,
		Translator:        translator,
	}, nil)

	naming := jobfiles.ResolveNaming(video, cfg.Paths.OutputDir, true, "")
	summary, err := p.Process(context.Background(), naming, jobfiles.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.EarlyExit {
		t.Fatal("eval mode must keep processing")
	}
	if recognizer.calls != 1 || translator.calls != 1 {
		t.Fatalf("calls: recognize=%d translate=%d", recognizer.calls, translator.calls)
	}
	// Primary target preserved, candidate on the llm path, triple collected.
	data, _ := os.ReadFile(filepath.Join(dir, "movie.zh.srt"))
	if string(data) != simplifiedSRT {
		t.Fatal("primary target was overwritten in eval mode")
	}
	sampleDir := filepath.Join(cfg.Paths.EvalDir, "movie")
	if _, err := os.Stat(filepath.Join(sampleDir, "source.srt")); err != nil {
		t.Fatalf("eval source copy missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sampleDir, "reference.zh.srt")); err != nil {
		t.Fatalf("eval reference copy missing: %v", err)
	}
}
