package daemonrun

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"subweave/internal/asr"
	"subweave/internal/config"
	"subweave/internal/logging"
	"subweave/internal/media"
	"subweave/internal/metadata"
	"subweave/internal/metadata/bangumi"
	"subweave/internal/metadata/tmdb"
	"subweave/internal/metadata/wmdb"
	"subweave/internal/pipeline"
	"subweave/internal/ratelimit"
	"subweave/internal/segmenter"
	"subweave/internal/services/asrcmd"
	"subweave/internal/services/llm"
	"subweave/internal/services/objectstore"
	"subweave/internal/stage"
	"subweave/internal/translate"
)

func newExtractor(cfg *config.Config) *media.Extractor {
	return media.NewExtractor(cfg.FFmpegBinary())
}

func newLimiters(cfg *config.Config) *ratelimit.Set {
	return ratelimit.NewSet(cfg)
}

// buildRecognizer assembles the recognition engine behind the shared ASR
// rate limiter. A misconfigured backend degrades to nil: jobs that need
// fresh recognition will fail with a configuration error, subtitle-reuse
// jobs still run.
func buildRecognizer(cfg *config.Config, limiters *ratelimit.Set, logger *slog.Logger) (pipeline.Recognizer, error) {
	var engine *asr.Engine
	switch strings.ToLower(strings.TrimSpace(cfg.ASR.Backend)) {
	case "cloud":
		cloud, err := asr.NewCloudBackend(cfg.ASR)
		if err != nil {
			logger.Warn("cloud recognition unavailable", logging.Error(err))
			return nil, nil
		}
		var uploader asr.Uploader
		if strings.TrimSpace(cfg.ObjectStore.Dir) != "" {
			store, err := objectstore.NewDirStore(cfg.ObjectStore)
			if err != nil {
				logger.Warn("object store unavailable, offline recognition disabled", logging.Error(err))
			} else {
				uploader = store
			}
		}
		engine = asr.NewEngine(cfg.ASR, cloud, cloud, uploader, logger)
		engine.WithVocabularyManager(cloud)
	default:
		svc, err := asrcmd.NewService(cfg.ASR)
		if err != nil {
			logger.Warn("command recognition unavailable", logging.Error(err))
			return nil, nil
		}
		engine = asr.NewEngine(cfg.ASR, svc, nil, nil, logger)
	}
	return limitedRecognizer{limiter: limiters.ASR, engine: engine}, nil
}

// buildTranslator wires the chat model, the line cache, and the shared LLM
// rate limiter. Translation disabled or an absent API key yields a nil
// translator; the pipeline skips the translate stage in that case.
func buildTranslator(cfg *config.Config, limiters *ratelimit.Set, logger *slog.Logger) (pipeline.Translator, func(), error) {
	if !cfg.Translate.Enabled {
		return nil, nil, nil
	}
	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		logger.Warn("translation enabled but llm.api_key is empty, translation disabled")
		return nil, nil, nil
	}
	model := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})

	var cache translate.Cache = translate.NopCache{}
	cleanup := func() {}
	if cfg.Translate.CacheEnabled {
		sqlCache, err := translate.OpenCache(cfg.Paths.CacheDir, logger)
		if err != nil {
			logger.Warn("translation cache unavailable, running uncached", logging.Error(err))
		} else {
			cache = sqlCache
			cleanup = func() { _ = sqlCache.Close() }
		}
	}

	translator := translate.New(cfg.Translate, model, cache, logger)
	translator.WithLimiter(limiters.LLM)
	return translator, cleanup, nil
}

// buildResolver stacks the configured metadata providers behind the shared
// metadata rate limiter. No providers means a nil resolver and the pipeline
// runs without work metadata.
func buildResolver(cfg *config.Config, limiters *ratelimit.Set, logger *slog.Logger) pipeline.Resolver {
	if !cfg.Metadata.Enabled {
		return nil
	}
	var providers []metadata.Provider
	if key := strings.TrimSpace(cfg.Metadata.TMDBAPIKey); key != "" {
		provider, err := tmdb.New(key, cfg.Metadata.TMDBBaseURL)
		if err != nil {
			logger.Warn("tmdb provider unavailable", logging.Error(err))
		} else {
			providers = append(providers, provider)
		}
	}
	if base := strings.TrimSpace(cfg.Metadata.BangumiBaseURL); base != "" {
		providers = append(providers, bangumi.New(base))
	}
	if base := strings.TrimSpace(cfg.Metadata.WmdbBaseURL); base != "" {
		providers = append(providers, wmdb.New(base))
	}
	if len(providers) == 0 {
		return nil
	}
	ttl := time.Duration(cfg.Metadata.CacheTTLSeconds) * time.Second
	resolver := metadata.NewResolver(providers, cfg.Metadata.MinConfidence, ttl, logger)
	resolver.WithLimiter(limiters.Metadata)
	return resolver
}

func workInfoModel(cfg *config.Config) metadata.WorkInfoModel {
	if !cfg.Metadata.UseLLMForWorkInfo {
		return nil
	}
	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		return nil
	}
	return llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
}

// limitedRecognizer applies the shared ASR rate limit ahead of the engine's
// own chunk-level pacing.
type limitedRecognizer struct {
	limiter ratelimit.Limiter
	engine  *asr.Engine
}

func (r limitedRecognizer) Recognize(ctx context.Context, wavPath string, opts asr.Options) ([]segmenter.Sentence, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.engine.Recognize(ctx, wavPath, opts)
}

// llmChecker surfaces chat-model reachability through the status command.
func llmChecker(cfg *config.Config) stage.HealthChecker {
	if !cfg.Translate.Enabled {
		return nil
	}
	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		return nil
	}
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))
	return healthFunc(func(ctx context.Context) stage.Health {
		if err := client.HealthCheck(ctx); err != nil {
			return stage.Unhealthy("translation llm", err.Error())
		}
		return stage.Healthy("translation llm")
	})
}

type healthFunc func(ctx context.Context) stage.Health

func (f healthFunc) HealthCheck(ctx context.Context) stage.Health { return f(ctx) }
