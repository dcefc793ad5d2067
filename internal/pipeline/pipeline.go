package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subweave/internal/asr"
	"subweave/internal/config"
	"subweave/internal/jobfiles"
	"subweave/internal/logging"
	"subweave/internal/media/audio"
	"subweave/internal/media/subsel"
	"subweave/internal/metadata"
	"subweave/internal/notifications"
	"subweave/internal/scriptid"
	"subweave/internal/segmenter"
	"subweave/internal/services"
	"subweave/internal/stage"
	"subweave/internal/subtitles"
)

// reuseSampleChars bounds how much subtitle text the reuse gate inspects.
const reuseSampleChars = 2000

// Pipeline executes jobs against an immutable config snapshot.
type Pipeline struct {
	cfg      *config.Config
	deps     Deps
	logger   *slog.Logger
	aliases  *metadata.AliasTable
	glossary []string
}

// Summary reports what one run produced.
type Summary struct {
	RunID     string
	Outputs   []string
	Reused    bool // source cues came from an existing subtitle
	EarlyExit bool // reusable target subtitle found, no recognition or translation
	Duration  time.Duration
}

// New builds a pipeline. Alias table and glossary load failures are logged
// and degrade to empty inputs.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	if deps.Rand == nil {
		deps.Rand = rand.Float64
	}

	p := &Pipeline{cfg: cfg, deps: deps, logger: logger}
	var err error
	if p.aliases, err = metadata.LoadAliases(cfg.Metadata.AliasFile); err != nil {
		logger.Warn("alias table unavailable", logging.Error(err))
		p.aliases, _ = metadata.LoadAliases("")
	}
	if cfg.Hotwords.UseGlossary {
		if p.glossary, err = hotwordGlossary(cfg.Hotwords.GlossaryFile); err != nil {
			logger.Warn("glossary unavailable", logging.Error(err))
		}
	}
	return p
}

// job carries the mutable state of one run between stages.
type job struct {
	naming    jobfiles.Naming
	overrides jobfiles.Overrides
	run       *jobfiles.Run
	logger    *slog.Logger

	stage      string
	info       metadata.WorkInfo
	meta       *metadata.WorkMetadata
	candidates []subsel.Track
	audioSel   audio.Selection

	sourceCues []subtitles.Cue
	sourceLang string
	reused     bool
	earlyExit  bool
	evalMode   bool

	// translated outputs that existed before this run started, per
	// destination language; the run never overwrites them unless forced.
	preExisting map[string]bool
	outputs     []string
	fallbacks   int
	reference   string // pre-existing target subtitle, for eval triples
}

// Process runs the full state machine for one admitted video. The caller
// holds the lock and releases it afterwards.
func (p *Pipeline) Process(ctx context.Context, naming jobfiles.Naming, overrides jobfiles.Overrides) (*Summary, error) {
	started := time.Now()
	runID := uuid.NewString()

	run, err := jobfiles.StartRun(naming, runID, p.cfg.Logging.MaxBytes, p.cfg.Logging.MaxBackups)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "start run", "could not open run audit trail", err)
	}

	j := &job{
		naming:      naming,
		overrides:   overrides,
		run:         run,
		logger:      run.Logger().With(logging.String("video", naming.VideoPath), logging.String("run_id", runID)),
		stage:       stage.Init,
		preExisting: map[string]bool{},
	}

	execErr := p.execute(ctx, j)
	if finishErr := run.Finish(execErr); finishErr != nil {
		p.logger.Warn("run meta finish failed", logging.Error(finishErr))
	}

	if execErr != nil {
		p.recordFailure(ctx, j, execErr)
		return nil, execErr
	}

	summary := &Summary{
		RunID:     runID,
		Outputs:   j.outputs,
		Reused:    j.reused,
		EarlyExit: j.earlyExit,
		Duration:  time.Since(started),
	}
	if err := p.deps.Notifier.NotifyJobCompleted(ctx, naming.VideoPath, summary.Outputs, summary.Duration); err != nil {
		p.logger.Warn("completion notification failed", logging.Error(err))
	}
	p.logger.Info("DONE",
		logging.String("video", naming.VideoPath),
		logging.Int("outputs", len(summary.Outputs)),
		logging.Bool("reused", summary.Reused),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

func (p *Pipeline) recordFailure(ctx context.Context, j *job, cause error) {
	if stage.IsASR(j.stage) {
		failure, err := jobfiles.RecordASRFailure(j.naming.ASRFailedPath(), j.stage, cause, p.cfg.ASR.MaxFailures)
		if err != nil {
			p.logger.Warn("asr failure record unwritable", logging.Error(err))
		} else if failure.Fatal {
			if err := p.deps.Notifier.NotifyASRFatal(ctx, j.naming.VideoPath, failure.Count); err != nil {
				p.logger.Warn("fatal notification failed", logging.Error(err))
			}
		}
	}
	if err := p.deps.Notifier.NotifyJobFailed(ctx, j.naming.VideoPath, j.stage, cause); err != nil {
		p.logger.Warn("failure notification failed", logging.Error(err))
	}
	p.logger.Error("job failed",
		logging.String("video", j.naming.VideoPath),
		logging.String("stage", j.stage),
		logging.Error(cause))
}

func (j *job) enter(name string) error {
	j.stage = name
	return j.run.EnterStage(name)
}

func (p *Pipeline) execute(ctx context.Context, j *job) error {
	p.gatherWorkInfo(ctx, j)

	if err := j.enter(stage.Probe); err != nil {
		return err
	}
	if err := p.probeStage(ctx, j); err != nil {
		return err
	}

	if err := j.enter(stage.SubtitleSelect); err != nil {
		return err
	}
	if err := p.selectStage(ctx, j); err != nil {
		return err
	}

	if !j.reused && !j.earlyExit {
		if err := p.recognizeStages(ctx, j); err != nil {
			return err
		}
	}

	if !j.earlyExit {
		if err := j.enter(stage.Translate); err != nil {
			return err
		}
		if err := p.translateStage(ctx, j); err != nil {
			return err
		}
	}

	if err := j.enter(stage.Finalize); err != nil {
		return err
	}
	return p.finalizeStage(ctx, j)
}

func (p *Pipeline) probeStage(ctx context.Context, j *job) error {
	probe, err := p.deps.Prober.Inspect(ctx, j.naming.VideoPath)
	if err != nil {
		return err
	}
	j.candidates = append(subsel.FromProbe(probe.SubtitleTracks), subsel.ScanSiblings(j.naming.VideoPath)...)

	sel := audio.Select(probe.AudioStreams, audio.Options{
		PreferredLangs:  p.cfg.Audio.PreferredLangs,
		ExcludeKeywords: p.cfg.Audio.ExcludeKeywords,
		TrackIndex:      p.cfg.Audio.TrackIndex,
		TrackLang:       p.cfg.Audio.TrackLang,
	})
	j.audioSel = sel
	j.logger.Info("probe complete",
		logging.Float64("duration_seconds", probe.DurationSeconds),
		logging.Int("audio_streams", len(probe.AudioStreams)),
		logging.Int("subtitle_candidates", len(j.candidates)),
		logging.String("audio_track", sel.Label()))

	for _, lang := range p.cfg.Translate.DestLangs {
		if jobfiles.Exists(j.naming.TranslatedSRTPath(lang)) {
			j.preExisting[lang] = true
		}
	}
	return nil
}

func (p *Pipeline) selectStage(ctx context.Context, j *job) error {
	mode := p.cfg.Subtitles.ReuseMode
	if j.overrides.UseExistingSubtitle {
		mode = subsel.ModeReuseIfGood
	}
	if j.overrides.ForceASR {
		mode = subsel.ModeIgnore
	}

	sel := subsel.Select(j.candidates, subsel.Options{
		Mode:        mode,
		TargetLangs: p.targetLangs(),
		SourceLangs: p.cfg.Subtitles.PreferredSrcLangs,
	})
	if !sel.Found {
		return nil
	}
	if sel.ReferenceOnly {
		j.logger.Info("forced image subtitle present, not reusable",
			logging.String("language", sel.Track.Language))
		return nil
	}

	cues, err := p.loadTrack(ctx, j, sel.Track)
	if err != nil {
		j.logger.Warn("subtitle candidate unreadable, recognising instead", logging.Error(err))
		return nil
	}
	cues, _ = subtitles.Validate(cues)
	if len(cues) == 0 {
		return nil
	}
	sample := sampleText(cues)

	if sel.TargetMatch {
		if mode == subsel.ModeReuseIfGood && !j.overrides.IgnoreSimplifiedSubtitle {
			return p.tryEarlyExit(j, sel, cues, sample)
		}
		// Target-language subtitle deliberately ignored: recognise fresh.
		return nil
	}
	if mode != subsel.ModeReuseIfGood {
		return nil
	}

	// Source-language reuse: confidence-gate unless the operator insisted.
	lang, conf := scriptid.ReuseConfidence(sample, reuseHints(sel.Track.Language, p.cfg.Subtitles.PreferredSrcLangs))
	if !j.overrides.UseExistingSubtitle && conf < p.cfg.Subtitles.ReuseMinConfidence {
		j.logger.Info("reuse rejected by confidence gate",
			logging.String("language", lang),
			logging.Float64("confidence", conf))
		return nil
	}
	if err := subtitles.WriteSRTFile(j.naming.SourceSRTPath(), cues); err != nil {
		return services.Wrap(services.ErrValidation, "subtitle_select", "write source srt", "could not persist reused subtitle", err)
	}
	j.sourceCues = cues
	j.sourceLang = firstNonEmpty(sel.Track.Language, lang, p.cfg.Translate.SourceLang)
	j.reused = true
	j.outputs = append(j.outputs, j.naming.SourceSRTPath())
	j.logger.Info("subtitle reused as source",
		logging.String("language", j.sourceLang),
		logging.Float64("confidence", conf),
		logging.Int("cues", len(cues)))
	return nil
}

// tryEarlyExit handles a candidate already in the simplified target
// language. A confirmed simplified subtitle ends the job with zero
// recognition or translation calls; evaluation-sample mode keeps going but
// records the existing file as the reference.
func (p *Pipeline) tryEarlyExit(j *job, sel subsel.Selection, cues []subtitles.Cue, sample string) error {
	target := p.cfg.Translate.SimplifiedTarget
	variant := scriptid.DescribeVariant(sel.Track.Title, sample)
	if target != "" && variant != scriptid.VariantSimplified && !j.overrides.UseExistingSubtitle {
		j.logger.Info("target-language subtitle rejected by variant gate",
			logging.String("variant", string(variant)))
		return nil
	}

	lang := firstNonEmpty(sel.Track.Language, target)
	canonical := j.naming.TranslatedSRTPath(lang)
	if sel.Track.Kind == subsel.KindExternal && sel.Track.Path == canonical {
		// Already exactly where the output belongs; preserve as-is.
	} else if !jobfiles.Exists(canonical) {
		if err := subtitles.WriteSRTFile(canonical, cues); err != nil {
			return services.Wrap(services.ErrValidation, "subtitle_select", "write target srt", "could not persist reused target subtitle", err)
		}
	}
	j.reference = canonical
	j.preExisting[lang] = true

	if p.shouldCollectEval() {
		j.evalMode = true
		j.logger.Info("evaluation sample mode: continuing past reusable target")
		return nil
	}
	j.earlyExit = true
	j.outputs = append(j.outputs, canonical)
	j.logger.Info("early exit on reusable target subtitle",
		logging.String("language", lang),
		logging.Int("cues", len(cues)))
	return nil
}

func (p *Pipeline) recognizeStages(ctx context.Context, j *job) error {
	if err := j.enter(stage.ASRPrepare); err != nil {
		return err
	}
	if p.deps.Recognizer == nil {
		return services.Wrap(services.ErrConfiguration, "asr_prepare", "recognizer",
			"no recognition backend configured and no reusable subtitle found", nil)
	}
	wavPath, opts, err := p.prepareRecognition(ctx, j)
	if err != nil {
		return err
	}
	defer os.Remove(wavPath)

	if err := j.enter(stage.ASRCall); err != nil {
		return err
	}
	sentences, err := p.deps.Recognizer.Recognize(ctx, wavPath, opts)
	if err != nil {
		return err
	}
	if len(sentences) == 0 {
		return services.Wrap(services.ErrTransient, "asr_call", "recognize", "recogniser returned no sentences", nil)
	}

	settings := segmenter.FromConfig(p.cfg.Segment)
	if j.overrides.SegmentMode != "" {
		settings.Mode = j.overrides.SegmentMode
	}
	cues := segmenter.Segment(sentences, settings)
	cues, issues := subtitles.Validate(cues)
	for _, issue := range issues {
		j.logger.Warn("validator repair", logging.String("issue", issue))
	}
	if len(cues) == 0 {
		return services.Wrap(services.ErrTransient, "asr_call", "segment", "no usable cues after segmentation", nil)
	}
	if err := subtitles.WriteSRTFile(j.naming.SourceSRTPath(), cues); err != nil {
		return services.Wrap(services.ErrValidation, "asr_call", "write source srt", "could not persist recognized cues", err)
	}
	j.sourceCues = cues
	j.sourceLang = firstNonEmpty(opts.Language, p.cfg.Translate.SourceLang)
	j.outputs = append(j.outputs, j.naming.SourceSRTPath())
	j.logger.Info("recognition complete",
		logging.Int("sentences", len(sentences)),
		logging.Int("cues", len(cues)))
	return nil
}

func (p *Pipeline) prepareRecognition(ctx context.Context, j *job) (string, asr.Options, error) {
	sel := j.audioSel
	if sel.StreamIndex < 0 {
		return "", asr.Options{}, services.Wrap(services.ErrValidation, "asr_prepare", "select audio", "file has no usable audio track", nil)
	}

	tmpDir := p.cfg.Paths.TmpDir
	if strings.TrimSpace(tmpDir) == "" {
		tmpDir = os.TempDir()
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", asr.Options{}, services.Wrap(services.ErrValidation, "asr_prepare", "tmp dir", "could not create work directory", err)
	}
	wavPath := filepath.Join(tmpDir, fmt.Sprintf("%s.%s.wav", j.naming.Base, j.run.Meta().RunID))

	if err := p.deps.AudioExtractor.ExtractAudioWAV(ctx, j.naming.VideoPath, sel.AudioIndex, p.cfg.ASR.SampleRate, wavPath); err != nil {
		return "", asr.Options{}, err
	}

	lang := firstNonEmpty(p.cfg.ASR.Language, sel.Language, p.cfg.Translate.SourceLang)
	opts := asr.Options{
		Language:   lang,
		SampleRate: p.cfg.ASR.SampleRate,
		Mode:       j.overrides.ASRMode,
		Hotwords:   p.buildHotwords(j, lang),
	}
	j.logger.Info("audio extracted",
		logging.String("wav", wavPath),
		logging.String("language", lang),
		logging.Int("hotwords", len(opts.Hotwords)))
	return wavPath, opts, nil
}

func (p *Pipeline) translateStage(ctx context.Context, j *job) error {
	if !p.cfg.Translate.Enabled || len(p.cfg.Translate.DestLangs) == 0 || p.deps.Translator == nil {
		return nil
	}
	if len(j.sourceCues) == 0 {
		return services.Wrap(services.ErrValidation, "translate", "input", "no source cues to translate", nil)
	}
	srcLang := firstNonEmpty(j.sourceLang, p.cfg.Translate.SourceLang)

	var firstTranslated []subtitles.Cue
	for _, dst := range p.cfg.Translate.DestLangs {
		cues, err := p.translateLanguage(ctx, j, srcLang, dst)
		if err != nil {
			return err
		}
		if firstTranslated == nil {
			firstTranslated = cues
		}
	}

	if p.cfg.Translate.Bilingual && len(firstTranslated) > 0 {
		bi := subtitles.BuildBilingual(j.sourceCues, firstTranslated)
		if err := subtitles.WriteSRTFile(j.naming.BilingualSRTPath(), bi); err != nil {
			return services.Wrap(services.ErrValidation, "translate", "write bilingual srt", "could not persist bilingual cues", err)
		}
		j.outputs = append(j.outputs, j.naming.BilingualSRTPath())
	}
	return nil
}

func (p *Pipeline) translateLanguage(ctx context.Context, j *job, srcLang, dst string) ([]subtitles.Cue, error) {
	result, err := p.deps.Translator.Translate(ctx, j.sourceCues, srcLang, dst)
	if err != nil {
		return nil, err
	}
	cues := result.Cues

	if len(result.Fallbacks) > 0 {
		j.fallbacks += len(result.Fallbacks)
		detail := fmt.Sprintf("run %s: %d/%d items fell back to source text",
			j.run.Meta().RunID, len(result.Fallbacks), len(cues))
		if err := jobfiles.AppendTranslateFailure(j.naming.TranslateFailedLogPath(dst), detail); err != nil {
			j.logger.Warn("translate failure log unwritable", logging.Error(err))
		}
	}

	if p.cfg.Translate.Polish {
		cues = p.deps.Translator.Polish(ctx, j.sourceCues, cues, srcLang, dst)
	}
	if max := p.cfg.Translate.MaxCharsPerLine; max > 0 {
		for i := range cues {
			cues[i].Text = subtitles.WrapText(cues[i].Text, max)
		}
	}
	cues, _ = subtitles.Validate(cues)

	outPath := j.naming.TranslatedSRTPath(dst)
	if j.preExisting[dst] && !j.overrides.ForceTranslate {
		// Never clobber a subtitle that predates this run.
		outPath = j.naming.LLMTranslatedSRTPath(dst)
	}
	if err := subtitles.WriteSRTFile(outPath, cues); err != nil {
		return nil, services.Wrap(services.ErrValidation, "translate", "write srt", "could not persist translated cues", err)
	}
	j.outputs = append(j.outputs, outPath)
	j.logger.Info("translation complete",
		logging.String("language", dst),
		logging.String("path", outPath),
		logging.Int("cues", len(cues)),
		logging.Int("from_cache", result.FromCache),
		logging.Int("fallbacks", len(result.Fallbacks)))
	return cues, nil
}

func (p *Pipeline) finalizeStage(ctx context.Context, j *job) error {
	if j.evalMode {
		p.collectEvalSample(j)
	}

	if err := jobfiles.WriteDone(j.naming.DonePath()); err != nil {
		return services.Wrap(services.ErrValidation, "finalize", "write done", "could not write done marker", err)
	}
	if err := jobfiles.ClearASRFailure(j.naming.ASRFailedPath()); err != nil {
		j.logger.Warn("asr failure marker not cleared", logging.Error(err))
	}
	if j.fallbacks == 0 {
		if err := jobfiles.ClearTranslateFailures(j.naming); err != nil {
			j.logger.Warn("translate failure logs not cleared", logging.Error(err))
		}
	}
	if err := jobfiles.ConsumeForceOnce(j.naming.OverridePath(), j.overrides); err != nil {
		j.logger.Warn("override sidecar not consumed", logging.Error(err))
	}

	if p.deps.Organizer != nil && !j.earlyExit {
		if _, err := p.deps.Organizer.DisposeSource(ctx, j.naming.VideoPath); err != nil {
			// Outputs are safe; disposition failure must not fail the job.
			j.logger.Warn("source disposition failed", logging.Error(err))
		}
	}
	return nil
}

func (p *Pipeline) targetLangs() []string {
	langs := make([]string, 0, len(p.cfg.Translate.DestLangs)+1)
	if target := p.cfg.Translate.SimplifiedTarget; target != "" {
		langs = append(langs, target)
	}
	for _, lang := range p.cfg.Translate.DestLangs {
		langs = appendUniqueString(langs, lang)
	}
	return langs
}

func (p *Pipeline) loadTrack(ctx context.Context, j *job, track subsel.Track) ([]subtitles.Cue, error) {
	if track.Kind == subsel.KindExternal {
		return subtitles.OpenExternal(track.Path)
	}
	tmpDir := p.cfg.Paths.TmpDir
	if strings.TrimSpace(tmpDir) == "" {
		tmpDir = os.TempDir()
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	tmp := filepath.Join(tmpDir, fmt.Sprintf("%s.s%d.srt", j.naming.Base, track.SubtitleIndex))
	defer os.Remove(tmp)
	if err := p.deps.SubtitleExtractor.ExtractSubtitleSRT(ctx, j.naming.VideoPath, track.SubtitleIndex, tmp); err != nil {
		return nil, err
	}
	return subtitles.ParseSRTFile(tmp)
}

func (p *Pipeline) shouldCollectEval() bool {
	if !p.cfg.Eval.Collect {
		return false
	}
	rate := p.cfg.Eval.SampleRate
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	return p.deps.Rand() < rate
}

func sampleText(cues []subtitles.Cue) string {
	text := subtitles.PlainText(cues)
	runes := []rune(text)
	if len(runes) > reuseSampleChars {
		runes = runes[:reuseSampleChars]
	}
	return string(runes)
}

func reuseHints(trackLang string, preferred []string) []string {
	hints := make([]string, 0, len(preferred)+1)
	if trackLang != "" {
		hints = append(hints, trackLang)
	}
	return append(hints, preferred...)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func appendUniqueString(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
