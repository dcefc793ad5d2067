package translate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"subweave/internal/config"
	"subweave/internal/logging"
	"subweave/internal/subtitles"
)

const (
	defaultBatchLines      = 10
	defaultMaxConcurrent   = 2
	defaultItemRetries     = 2
	defaultPolishBatchSize = 20
)

// ChatModel is the completion capability the translator depends on.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Limiter throttles outbound chat calls. All batches share one bucket.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Result reports one language's translation outcome.
type Result struct {
	Cues      []subtitles.Cue
	FromCache int
	Fallbacks []int
}

// Translator drives cache lookup, batching, and fallback for one job.
type Translator struct {
	cfg     config.Translate
	model   ChatModel
	cache   Cache
	limiter Limiter
	logger  *slog.Logger
}

// New builds a translator. A nil cache disables caching.
func New(cfg config.Translate, model ChatModel, cache Cache, logger *slog.Logger) *Translator {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{cfg: cfg, model: model, cache: cache, logger: logger}
}

// WithLimiter attaches a shared token bucket.
func (t *Translator) WithLimiter(l Limiter) { t.limiter = l }

// Translate produces destination-language cues with source timings. Failed
// items fall back to source text and are reported in Result.Fallbacks; the
// only hard error is context cancellation.
func (t *Translator) Translate(ctx context.Context, cues []subtitles.Cue, srcLang, dstLang string) (*Result, error) {
	result := &Result{}
	if len(cues) == 0 {
		return result, nil
	}

	items, _ := BuildItems(cues, srcLang, t.cfg.GroupingGapMS)
	translations := make([]string, len(items))
	var pending []Item
	for _, item := range items {
		if cached, ok := t.cache.Get(ctx, srcLang, dstLang, item.CurText); ok {
			translations[item.Index] = cached
			result.FromCache++
			// Rewrite the hit so the stored row canonicalises its langs.
			t.cache.Put(ctx, srcLang, dstLang, item.CurText, cached)
			continue
		}
		pending = append(pending, item)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(t.maxConcurrent())
	for _, batch := range t.splitBatches(pending) {
		group.Go(func() error {
			lines, failed, err := t.translateBatch(groupCtx, batch, srcLang, dstLang)
			if err != nil {
				return err
			}
			for i, item := range batch {
				translations[item.Index] = lines[i]
			}
			if len(failed) > 0 {
				mu.Lock()
				result.Fallbacks = append(result.Fallbacks, failed...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]subtitles.Cue, len(cues))
	for i, cue := range cues {
		out[i] = subtitles.Cue{
			Index:   cue.Index,
			StartMS: cue.StartMS,
			EndMS:   cue.EndMS,
			Text:    translations[i],
		}
	}
	result.Cues = out
	return result, nil
}

// translateBatch runs one batch, falling back to per-item calls and then to
// source text. It only errors on context cancellation.
func (t *Translator) translateBatch(ctx context.Context, batch []Item, srcLang, dstLang string) ([]string, []int, error) {
	lines, err := t.callBatch(ctx, batch, srcLang, dstLang)
	if err == nil {
		for i, item := range batch {
			t.cache.Put(ctx, srcLang, dstLang, item.CurText, lines[i])
		}
		return lines, nil, nil
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	t.logger.Warn("translation batch failed, retrying items individually",
		logging.Int("items", len(batch)),
		logging.String("dst_lang", dstLang),
		logging.Error(err))

	lines = make([]string, len(batch))
	var failed []int
	for i, item := range batch {
		line, itemErr := t.translateItem(ctx, item, srcLang, dstLang)
		if itemErr != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			// Source text verbatim keeps the SRT complete.
			lines[i] = item.CurText
			failed = append(failed, item.Index)
			continue
		}
		lines[i] = line
		t.cache.Put(ctx, srcLang, dstLang, item.CurText, line)
	}
	return lines, failed, nil
}

func (t *Translator) callBatch(ctx context.Context, batch []Item, srcLang, dstLang string) ([]string, error) {
	if t.cfg.BatchMode == "bulk" && len(batch) > 1 {
		if err := t.wait(ctx); err != nil {
			return nil, err
		}
		system := fmt.Sprintf(bulkSystemPrompt, languageName(srcLang), languageName(dstLang))
		response, err := t.model.Complete(ctx, system, bulkPrompt(batch))
		if err != nil {
			return nil, err
		}
		return parseNumbered(response, len(batch))
	}
	lines := make([]string, len(batch))
	for i, item := range batch {
		line, err := t.callItem(ctx, item, srcLang, dstLang)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}

func (t *Translator) translateItem(ctx context.Context, item Item, srcLang, dstLang string) (string, error) {
	attempts := t.cfg.RetryMaxAttempts
	if attempts <= 0 {
		attempts = defaultItemRetries
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		line, err := t.callItem(ctx, item, srcLang, dstLang)
		if err == nil {
			return line, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (t *Translator) callItem(ctx context.Context, item Item, srcLang, dstLang string) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	system := fmt.Sprintf(contextSystemPrompt, languageName(srcLang), languageName(dstLang))
	response, err := t.model.Complete(ctx, system, contextPrompt(item))
	if err != nil {
		return "", err
	}
	return parseSingleLine(response)
}

func (t *Translator) splitBatches(items []Item) [][]Item {
	if len(items) == 0 {
		return nil
	}
	if t.cfg.BatchMode != "bulk" {
		batches := make([][]Item, len(items))
		for i, item := range items {
			batches[i] = []Item{item}
		}
		return batches
	}
	size := t.cfg.BatchLines
	if size <= 0 {
		size = defaultBatchLines
	}
	var batches [][]Item
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func (t *Translator) maxConcurrent() int {
	if t.cfg.MaxConcurrent > 0 {
		return t.cfg.MaxConcurrent
	}
	return defaultMaxConcurrent
}

func (t *Translator) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
