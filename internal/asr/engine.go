package asr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"subweave/internal/config"
	"subweave/internal/hotwords"
	"subweave/internal/logging"
	"subweave/internal/segmenter"
	"subweave/internal/services"
)

// Options carries per-job recognition parameters. Mode, when set, overrides
// the configured recognition mode for this job only.
type Options struct {
	Language     string
	SampleRate   int
	Mode         string
	Hotwords     []hotwords.Entry
	VocabularyID string
	// VADSentencing switches the backend to voice-activity-driven sentence
	// splitting: semantic punctuation off, a longer max-silence window,
	// multi-threshold detection on. The realtime cascade sets it for its
	// final retry.
	VADSentencing bool
}

// Recognizer transcribes a local WAV file synchronously. Implementations
// wrap a local command or a cloud realtime endpoint.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, wavPath string, opts Options) ([]segmenter.Sentence, error)
}

// OfflineBackend is an asynchronous batch recognizer: audio is published at
// a URL, a job is submitted, and the transcript is polled for.
type OfflineBackend interface {
	Submit(ctx context.Context, audioURL string, opts Options) (jobID string, err error)
	Fetch(ctx context.Context, jobID string) (*OfflineResult, error)
}

// OfflineResult is one poll observation of an offline job.
type OfflineResult struct {
	Done      bool
	Sentences []segmenter.Sentence
}

// Uploader publishes a local file at a URL an offline backend can read.
type Uploader interface {
	Publish(ctx context.Context, localPath string) (url string, err error)
}

// VocabularyManager registers a hotword list with the recognition vendor.
// A registered vocabulary lives for the duration of one job.
type VocabularyManager interface {
	CreateVocabulary(ctx context.Context, items []hotwords.Entry, targetModel string) (string, error)
	DeleteVocabulary(ctx context.Context, id string) error
}

// Engine drives the recognition cascade for one job at a time.
type Engine struct {
	cfg      config.ASR
	realtime Recognizer
	offline  OfflineBackend
	uploader Uploader
	vocab    VocabularyManager
	logger   *slog.Logger
}

// NewEngine assembles an engine. The offline backend and uploader are
// optional; without them auto mode degrades to realtime-only.
func NewEngine(cfg config.ASR, realtime Recognizer, offline OfflineBackend, uploader Uploader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, realtime: realtime, offline: offline, uploader: uploader, logger: logger}
}

// WithVocabularyManager enables hotword vocabulary registration.
func (e *Engine) WithVocabularyManager(v VocabularyManager) {
	e.vocab = v
}

// Recognize transcribes the WAV at wavPath according to the configured mode.
// Auto mode runs chunked realtime recognition and falls back to the offline
// backend when too many chunks fail.
func (e *Engine) Recognize(ctx context.Context, wavPath string, opts Options) ([]segmenter.Sentence, error) {
	if opts.SampleRate == 0 {
		opts.SampleRate = e.cfg.SampleRate
	}

	switch e.cfg.HotwordMode {
	case "off":
		opts.Hotwords = nil
	case "vocabulary":
		if e.vocab != nil && len(opts.Hotwords) > 0 && opts.VocabularyID == "" {
			id, err := e.vocab.CreateVocabulary(ctx, opts.Hotwords, e.cfg.Model)
			if err != nil {
				e.logger.Warn("vocabulary registration failed, continuing without hotwords",
					logging.Error(err))
			} else {
				opts.VocabularyID = id
				defer func() {
					if err := e.vocab.DeleteVocabulary(context.WithoutCancel(ctx), id); err != nil {
						e.logger.Warn("vocabulary cleanup failed",
							logging.String("vocabulary_id", id),
							logging.Error(err))
					}
				}()
			}
		}
	}

	mode := e.cfg.Mode
	if opts.Mode != "" {
		mode = opts.Mode
	}
	switch mode {
	case "offline":
		return e.recognizeOffline(ctx, wavPath, opts)
	case "realtime":
		return e.recognizeRealtime(ctx, wavPath, opts)
	default: // auto
		sentences, err := e.recognizeRealtime(ctx, wavPath, opts)
		if err == nil {
			return sentences, nil
		}
		if e.offline == nil || e.uploader == nil || services.Fatal(err) {
			return nil, err
		}
		e.logger.Warn("realtime recognition degraded, falling back to offline",
			logging.Error(err),
			logging.String(logging.FieldEventType, "asr_fallback_offline"))
		return e.recognizeOffline(ctx, wavPath, opts)
	}
}

// recognizeRealtime splits the audio into overlapping chunks and transcribes
// them sequentially, retrying each chunk on transient failures. Exceeding
// the failure-rate threshold aborts the pass so auto mode can fall back.
func (e *Engine) recognizeRealtime(ctx context.Context, wavPath string, opts Options) ([]segmenter.Sentence, error) {
	if e.realtime == nil {
		return nil, services.Wrap(services.ErrConfiguration, "asr_call", "realtime", "no realtime recognizer configured", nil)
	}
	if e.cfg.HotwordMode == "param" && len(opts.Hotwords) > 0 {
		e.logger.Warn("realtime recognition ignores param-mode hotwords",
			logging.Int("hotwords", len(opts.Hotwords)))
		opts.Hotwords = nil
	}

	w, err := ReadWAV(wavPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "asr_call", "read audio", "cannot parse extracted audio", err)
	}
	chunkSeconds := float64(e.cfg.ChunkSeconds)
	if chunkSeconds <= 0 {
		chunkSeconds = ChooseRealtimeChunkSeconds(
			float64(w.DurationMS())/1000,
			float64(e.cfg.ChunkMinSeconds),
			float64(e.cfg.ChunkMaxSeconds),
			e.cfg.ChunkTarget,
		)
	}

	chunkDir, err := os.MkdirTemp(filepath.Dir(wavPath), "chunks-")
	if err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}
	defer os.RemoveAll(chunkDir)

	minChunk := float64(e.cfg.ChunkMinSeconds)
	if minChunk <= 0 {
		minChunk = defaultChunkMinSeconds
	}
	vadRetried := false
	for attempt := 0; ; attempt++ {
		attemptDir := filepath.Join(chunkDir, fmt.Sprintf("pass%d", attempt))
		chunks, err := SplitWAVByDuration(wavPath, attemptDir, chunkSeconds, e.cfg.OverlapMS)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "asr_call", "split audio", "cannot split audio into chunks", err)
		}
		sentences, err := e.recognizeChunks(ctx, chunks, opts)
		if err == nil {
			return sentences, nil
		}
		if ctx.Err() != nil || !errors.Is(err, errFailureRate) {
			return nil, err
		}
		// Too many chunk failures can mean the windows are too long for the
		// backend; halve and retry until the floor.
		if chunkSeconds/2 >= minChunk {
			chunkSeconds /= 2
			e.logger.Warn("halving chunk duration after failure-rate abort",
				logging.Float64("chunk_seconds", chunkSeconds),
				logging.String(logging.FieldEventType, "asr_chunk_halved"))
			continue
		}
		if vadRetried {
			return nil, err
		}
		// Final realtime resort once the floor is reached: let voice
		// activity detection drive sentencing instead of semantic
		// punctuation.
		vadRetried = true
		opts.VADSentencing = true
		e.logger.Warn("retrying with vad-driven sentencing after failure-rate abort",
			logging.Float64("chunk_seconds", chunkSeconds),
			logging.String(logging.FieldEventType, "asr_vad_retry"))
	}
}

// errFailureRate marks a realtime pass aborted for exceeding the chunk
// failure-rate threshold; the cascade reacts by shortening chunks.
var errFailureRate = errors.New("chunk failure rate exceeded threshold")

// recognizeChunks transcribes chunks sequentially, retrying each on
// transient failures, and stitches the results into one timeline.
func (e *Engine) recognizeChunks(ctx context.Context, chunks []Chunk, opts Options) ([]segmenter.Sentence, error) {
	// Vendor error envelopes (ErrExternalTool) are chunk failures but not
	// worth an immediate retry; only transient transport errors are.
	retry := retrypolicy.Builder[[]segmenter.Sentence]().
		HandleIf(func(_ []segmenter.Sentence, err error) bool {
			return err != nil && (errors.Is(err, services.ErrTransient) || errors.Is(err, services.ErrTimeout))
		}).
		WithMaxRetries(e.cfg.RealtimeRetry).
		WithBackoff(time.Second, 30*time.Second).
		Build()

	perChunk := make([][]segmenter.Sentence, len(chunks))
	failed := 0
	var lastErr error
	for i, chunk := range chunks {
		chunkPath := chunk.Path
		sentences, err := failsafe.NewExecutor[[]segmenter.Sentence](retry).
			WithContext(ctx).
			Get(func() ([]segmenter.Sentence, error) {
				return e.realtime.Recognize(ctx, chunkPath, opts)
			})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			lastErr = err
			e.logger.Warn("chunk recognition failed",
				logging.Int("chunk", i),
				logging.Int("failed_chunks", failed),
				logging.Error(err))
			if e.exceedsFailureRate(failed, len(chunks)) {
				return nil, services.Wrap(services.ErrTransient, "asr_call", "realtime",
					fmt.Sprintf("%d/%d chunks failed: %v", failed, len(chunks), err), errFailureRate)
			}
			continue
		}
		perChunk[i] = sentences
	}
	if failed == len(chunks) && len(chunks) > 0 {
		return nil, services.Wrap(services.ErrTransient, "asr_call", "realtime", "every chunk failed", lastErr)
	}

	stitched := Stitch(chunks, perChunk)
	e.logger.Info("realtime recognition complete",
		logging.Int("chunks", len(chunks)),
		logging.Int("failed_chunks", failed),
		logging.Int("sentences", len(stitched)))
	return stitched, nil
}

func (e *Engine) exceedsFailureRate(failed, total int) bool {
	if total == 0 {
		return false
	}
	threshold := e.cfg.FailureRateThreshold
	if threshold <= 0 {
		threshold = 0.3
	}
	return float64(failed)/float64(total) > threshold
}

// recognizeOffline publishes the audio and polls the batch backend until the
// transcript is ready or the configured timeout passes.
func (e *Engine) recognizeOffline(ctx context.Context, wavPath string, opts Options) ([]segmenter.Sentence, error) {
	if e.offline == nil || e.uploader == nil {
		return nil, services.Wrap(services.ErrConfiguration, "asr_call", "offline", "no offline backend configured", nil)
	}

	audioURL, err := e.uploader.Publish(ctx, wavPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr_call", "upload audio", "cannot publish audio for offline recognition", err)
	}
	jobID, err := e.offline.Submit(ctx, audioURL, opts)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr_call", "submit", "offline submission failed", err)
	}
	e.logger.Info("offline recognition submitted",
		logging.String("job_id", jobID),
		logging.String(logging.FieldEventType, "asr_offline_submitted"))

	interval := time.Duration(e.cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	deadline := time.Now().Add(time.Duration(e.cfg.TimeoutSeconds) * time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		result, err := e.offline.Fetch(ctx, jobID)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "asr_call", "poll", "offline poll failed", err)
		}
		if result != nil && result.Done {
			return result.Sentences, nil
		}
		if e.cfg.TimeoutSeconds > 0 && time.Now().After(deadline) {
			return nil, services.Wrap(services.ErrTimeout, "asr_call", "poll",
				fmt.Sprintf("offline job %s did not finish within %ds", jobID, e.cfg.TimeoutSeconds), nil)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
