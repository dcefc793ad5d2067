package pipeline

import (
	"context"

	"subweave/internal/asr"
	"subweave/internal/media"
	"subweave/internal/metadata"
	"subweave/internal/notifications"
	"subweave/internal/organizer"
	"subweave/internal/segmenter"
	"subweave/internal/subtitles"
	"subweave/internal/translate"
)

// Prober inspects a video container.
type Prober interface {
	Inspect(ctx context.Context, path string) (media.Probe, error)
}

// AudioExtractor produces the mono PCM WAV recognition works on.
type AudioExtractor interface {
	ExtractAudioWAV(ctx context.Context, videoPath string, audioIndex, sampleRate int, outPath string) error
}

// SubtitleExtractor dumps an embedded text subtitle stream to SRT.
type SubtitleExtractor interface {
	ExtractSubtitleSRT(ctx context.Context, videoPath string, subtitleIndex int, outPath string) error
}

// Recognizer transcribes a WAV file. The production implementation is the
// asr engine with its cascade; tests substitute fakes.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string, opts asr.Options) ([]segmenter.Sentence, error)
}

// Translator produces destination-language cues and optionally polishes
// them.
type Translator interface {
	Translate(ctx context.Context, cues []subtitles.Cue, srcLang, dstLang string) (*translate.Result, error)
	Polish(ctx context.Context, source, translated []subtitles.Cue, srcLang, dstLang string) []subtitles.Cue
}

// Resolver looks up work metadata for hotwords and logging.
type Resolver interface {
	Resolve(ctx context.Context, query metadata.WorkQuery) (*metadata.WorkMetadata, error)
}

// Deps are the collaborators a pipeline drives. Prober, AudioExtractor,
// SubtitleExtractor, and Recognizer are required for recognition jobs;
// the rest are optional and absent features degrade.
type Deps struct {
	Prober            Prober
	AudioExtractor    AudioExtractor
	SubtitleExtractor SubtitleExtractor
	Recognizer        Recognizer
	Translator        Translator
	Resolver          Resolver
	WorkInfoModel     metadata.WorkInfoModel
	Notifier          notifications.Service
	Organizer         *organizer.Organizer
	Rand              func() float64
}

// ffprobeProber adapts the exec-backed media inspector.
type ffprobeProber struct {
	binary string
}

func (f ffprobeProber) Inspect(ctx context.Context, path string) (media.Probe, error) {
	return media.Inspect(ctx, f.binary, path)
}

// ExecProber returns a Prober backed by the ffprobe binary.
func ExecProber(ffprobeBinary string) Prober {
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return ffprobeProber{binary: ffprobeBinary}
}
