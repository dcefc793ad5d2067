package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWatch()
	c.normalizeQueue()
	c.normalizeASR()
	c.normalizeTranslate()
	if err := c.normalizeMetadata(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	c.normalizeSegment()
	if err := c.normalizeObjectStore(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeLogging()
	if err := c.normalizeIPC(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	roots := make([]string, 0, len(c.Paths.WatchDirs))
	seen := make(map[string]struct{}, len(c.Paths.WatchDirs))
	for _, dir := range c.Paths.WatchDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("paths.watch_dirs: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		roots = append(roots, expanded)
	}
	c.Paths.WatchDirs = roots

	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TmpDir) == "" {
		c.Paths.TmpDir = defaultTmpDir
	}
	if c.Paths.TmpDir, err = expandPath(c.Paths.TmpDir); err != nil {
		return fmt.Errorf("paths.tmp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.EvalDir) == "" {
		c.Paths.EvalDir = defaultEvalDir
	}
	if c.Paths.EvalDir, err = expandPath(c.Paths.EvalDir); err != nil {
		return fmt.Errorf("paths.eval_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWatch() {
	if c.Watch.ScanIntervalSeconds <= 0 {
		c.Watch.ScanIntervalSeconds = 300
	}
	if len(c.Watch.VideoExtensions) == 0 {
		c.Watch.VideoExtensions = Default().Watch.VideoExtensions
	}
	c.Watch.TriggerBasename = strings.TrimSpace(c.Watch.TriggerBasename)
	if c.Watch.TriggerBasename == "" {
		c.Watch.TriggerBasename = defaultTriggerBasename
	}
	c.Watch.RescanCron = strings.TrimSpace(c.Watch.RescanCron)
}

func (c *Config) normalizeQueue() {
	if c.Queue.WorkerConcurrency <= 0 {
		c.Queue.WorkerConcurrency = 1
	}
	if c.Queue.MaxActiveJobs <= 0 {
		c.Queue.MaxActiveJobs = c.Queue.WorkerConcurrency
	}
	if c.Queue.FFmpegConcurrency <= 0 {
		c.Queue.FFmpegConcurrency = 1
	}
}

func (c *Config) normalizeASR() {
	c.ASR.Backend = strings.ToLower(strings.TrimSpace(c.ASR.Backend))
	if c.ASR.Backend == "" {
		c.ASR.Backend = "command"
	}
	c.ASR.Mode = strings.ToLower(strings.TrimSpace(c.ASR.Mode))
	if c.ASR.Mode == "" {
		c.ASR.Mode = "auto"
	}
	c.ASR.Model = strings.TrimSpace(c.ASR.Model)
	c.ASR.APIKey = strings.TrimSpace(c.ASR.APIKey)
	if c.ASR.APIKey == "" {
		if value, ok := os.LookupEnv("ASR_API_KEY"); ok {
			c.ASR.APIKey = strings.TrimSpace(value)
		}
	}
	c.ASR.Language = strings.ToLower(strings.TrimSpace(c.ASR.Language))
	if c.ASR.Language == "" {
		c.ASR.Language = "auto"
	}
	if c.ASR.SampleRate <= 0 {
		c.ASR.SampleRate = 16000
	}
	if c.ASR.ChunkMinSeconds <= 0 {
		c.ASR.ChunkMinSeconds = 300
	}
	if c.ASR.ChunkMaxSeconds < c.ASR.ChunkMinSeconds {
		c.ASR.ChunkMaxSeconds = c.ASR.ChunkMinSeconds
	}
	if c.ASR.ChunkTarget <= 0 {
		c.ASR.ChunkTarget = 12
	}
	if c.ASR.OverlapMS < 0 {
		c.ASR.OverlapMS = 0
	}
	if c.ASR.FailureRateThreshold <= 0 || c.ASR.FailureRateThreshold > 1 {
		c.ASR.FailureRateThreshold = 0.3
	}
	if c.ASR.RealtimeRetry <= 0 {
		c.ASR.RealtimeRetry = 2
	}
	if c.ASR.MaxFailures <= 0 {
		c.ASR.MaxFailures = 3
	}
	if c.ASR.FailCooldownSeconds <= 0 {
		c.ASR.FailCooldownSeconds = 3600
	}
	c.ASR.HotwordMode = strings.ToLower(strings.TrimSpace(c.ASR.HotwordMode))
	if c.ASR.HotwordMode == "" {
		c.ASR.HotwordMode = "vocabulary"
	}
	if c.ASR.TimeoutSeconds <= 0 {
		c.ASR.TimeoutSeconds = 600
	}
	if c.ASR.PollIntervalSeconds <= 0 {
		c.ASR.PollIntervalSeconds = 10
	}
	if c.ASR.RPS < 0 {
		c.ASR.RPS = 0
	}
}

func (c *Config) normalizeTranslate() {
	c.Translate.SourceLang = strings.ToLower(strings.TrimSpace(c.Translate.SourceLang))
	langs := make([]string, 0, len(c.Translate.DestLangs))
	seen := make(map[string]struct{}, len(c.Translate.DestLangs))
	for _, lang := range c.Translate.DestLangs {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	c.Translate.DestLangs = langs
	c.Translate.SimplifiedTarget = strings.ToLower(strings.TrimSpace(c.Translate.SimplifiedTarget))
	if c.Translate.SimplifiedTarget == "" && len(langs) > 0 {
		c.Translate.SimplifiedTarget = langs[0]
	}
	c.Translate.BatchMode = strings.ToLower(strings.TrimSpace(c.Translate.BatchMode))
	if c.Translate.BatchMode == "" {
		c.Translate.BatchMode = "context"
	}
	if c.Translate.BatchLines <= 0 {
		c.Translate.BatchLines = 20
	}
	if c.Translate.MaxConcurrent <= 0 {
		c.Translate.MaxConcurrent = 1
	}
	if c.Translate.PolishBatchSize <= 0 {
		c.Translate.PolishBatchSize = 10
	}
	if c.Translate.MaxCharsPerLine < 0 {
		c.Translate.MaxCharsPerLine = 0
	}
	if c.Translate.GroupingGapMS <= 0 {
		c.Translate.GroupingGapMS = 600
	}
	if c.Translate.RetryMaxAttempts <= 0 {
		c.Translate.RetryMaxAttempts = 3
	}
	if c.Translate.RPS < 0 {
		c.Translate.RPS = 0
	}
}

func (c *Config) normalizeMetadata() error {
	if c.Metadata.TMDBAPIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.Metadata.TMDBAPIKey = strings.TrimSpace(value)
		}
	}
	c.Metadata.TMDBBaseURL = strings.TrimSpace(c.Metadata.TMDBBaseURL)
	if c.Metadata.TMDBBaseURL == "" {
		c.Metadata.TMDBBaseURL = defaultTMDBBaseURL
	}
	c.Metadata.BangumiBaseURL = strings.TrimSpace(c.Metadata.BangumiBaseURL)
	if c.Metadata.BangumiBaseURL == "" {
		c.Metadata.BangumiBaseURL = defaultBangumiBaseURL
	}
	c.Metadata.WmdbBaseURL = strings.TrimSpace(c.Metadata.WmdbBaseURL)
	if c.Metadata.WmdbBaseURL == "" {
		c.Metadata.WmdbBaseURL = defaultWmdbBaseURL
	}
	if c.Metadata.MinConfidence < 0 || c.Metadata.MinConfidence > 1 {
		c.Metadata.MinConfidence = 0.5
	}
	if c.Metadata.CacheTTLSeconds <= 0 {
		c.Metadata.CacheTTLSeconds = 3600
	}
	if len(c.Metadata.LanguagePriority) == 0 {
		c.Metadata.LanguagePriority = Default().Metadata.LanguagePriority
	}
	if strings.TrimSpace(c.Metadata.AliasFile) != "" {
		expanded, err := expandPath(c.Metadata.AliasFile)
		if err != nil {
			return fmt.Errorf("metadata.alias_file: %w", err)
		}
		c.Metadata.AliasFile = expanded
	}
	c.Metadata.ManualDir = strings.TrimSpace(c.Metadata.ManualDir)
	if c.Metadata.ManualDir == "" {
		c.Metadata.ManualDir = "metadata"
	}
	if c.Metadata.RPS < 0 {
		c.Metadata.RPS = 0
	}
	return nil
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.ReuseMode = strings.ToLower(strings.TrimSpace(c.Subtitles.ReuseMode))
	if c.Subtitles.ReuseMode == "" {
		c.Subtitles.ReuseMode = "reuse_if_good"
	}
	if c.Subtitles.ReuseMinConfidence <= 0 || c.Subtitles.ReuseMinConfidence > 1 {
		c.Subtitles.ReuseMinConfidence = 0.6
	}
	if len(c.Subtitles.PreferredSrcLangs) == 0 {
		c.Subtitles.PreferredSrcLangs = Default().Subtitles.PreferredSrcLangs
	}
}

func (c *Config) normalizeSegment() {
	c.Segment.Mode = strings.ToLower(strings.TrimSpace(c.Segment.Mode))
	if c.Segment.Mode == "" {
		c.Segment.Mode = "post"
	}
	if c.Segment.MaxDurationSeconds <= 0 {
		c.Segment.MaxDurationSeconds = 3.5
	}
	if c.Segment.MaxChars <= 0 {
		c.Segment.MaxChars = 25
	}
	if c.Segment.MinDurationSeconds <= 0 {
		c.Segment.MinDurationSeconds = 1.0
	}
	if c.Segment.MinChars <= 0 {
		c.Segment.MinChars = 2
	}
	if c.Segment.MergeGapMS <= 0 {
		c.Segment.MergeGapMS = 400
	}
}

func (c *Config) normalizeObjectStore() error {
	if strings.TrimSpace(c.ObjectStore.Dir) != "" {
		expanded, err := expandPath(c.ObjectStore.Dir)
		if err != nil {
			return fmt.Errorf("object_store.dir: %w", err)
		}
		c.ObjectStore.Dir = expanded
	}
	c.ObjectStore.BaseURL = strings.TrimRight(strings.TrimSpace(c.ObjectStore.BaseURL), "/")
	if c.ObjectStore.SignedTTLSeconds <= 0 {
		c.ObjectStore.SignedTTLSeconds = 3600
	}
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.Disposition = strings.ToLower(strings.TrimSpace(c.Source.Disposition))
	if c.Source.Disposition == "" {
		c.Source.Disposition = "keep"
	}
	if strings.TrimSpace(c.Source.MoveDir) != "" {
		expanded, err := expandPath(c.Source.MoveDir)
		if err != nil {
			return fmt.Errorf("source.move_dir: %w", err)
		}
		c.Source.MoveDir = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxBytes <= 0 {
		c.Logging.MaxBytes = defaultLogMaxBytes
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeIPC() error {
	if strings.TrimSpace(c.IPC.SocketPath) == "" {
		c.IPC.SocketPath = defaultSocketPath
	}
	expanded, err := expandPath(c.IPC.SocketPath)
	if err != nil {
		return fmt.Errorf("ipc.socket_path: %w", err)
	}
	c.IPC.SocketPath = expanded
	return nil
}
