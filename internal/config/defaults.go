package config

const (
	defaultCacheDir        = "~/.cache/subweave"
	defaultLogDir          = "~/.local/share/subweave/logs"
	defaultTmpDir          = "~/.cache/subweave/tmp"
	defaultEvalDir         = "~/.local/share/subweave/eval"
	defaultSocketPath      = "~/.cache/subweave/subweave.sock"
	defaultTriggerBasename = ".scan_now"
	defaultTMDBBaseURL     = "https://api.themoviedb.org/3"
	defaultBangumiBaseURL  = "https://api.bgm.tv"
	defaultWmdbBaseURL     = "https://api.wmdb.tv/api/v1"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogMaxBytes     = 10 << 20
	defaultLogMaxBackups   = 3
	defaultRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
			TmpDir:   defaultTmpDir,
			EvalDir:  defaultEvalDir,
		},
		Watch: Watch{
			ScanIntervalSeconds: 300,
			Recursive:           true,
			VideoExtensions:     []string{".mkv", ".mp4", ".avi", ".mov", ".ts", ".m2ts", ".wmv", ".webm"},
			TriggerBasename:     defaultTriggerBasename,
		},
		Admission: Admission{
			MinBytes:          1 << 20,
			StabilityDwellMS:  2000,
			LockTTLSeconds:    6 * 3600,
			OutputBesideVideo: true,
		},
		Queue: Queue{
			PriorityEnabled:   true,
			WorkerConcurrency: 1,
			MaxActiveJobs:     1,
			FFmpegConcurrency: 1,
		},
		ASR: ASR{
			Backend:              "command",
			Mode:                 "auto",
			Language:             "auto",
			SampleRate:           16000,
			ChunkMinSeconds:      300,
			ChunkMaxSeconds:      900,
			ChunkTarget:          12,
			OverlapMS:            2000,
			FailureRateThreshold: 0.3,
			RealtimeRetry:        2,
			MaxFailures:          3,
			FailCooldownSeconds:  3600,
			HotwordMode:          "vocabulary",
			TimeoutSeconds:       600,
			PollIntervalSeconds:  10,
		},
		Translate: Translate{
			Enabled:          true,
			SourceLang:       "ja",
			DestLangs:        []string{"zh"},
			SimplifiedTarget: "zh",
			BatchMode:        "context",
			BatchLines:       20,
			MaxConcurrent:    4,
			PolishBatchSize:  10,
			MaxCharsPerLine:  18,
			CacheEnabled:     true,
			GroupingGapMS:    600,
			RetryMaxAttempts: 3,
		},
		LLM: LLM{
			TimeoutSeconds: 60,
		},
		Metadata: Metadata{
			Enabled:          true,
			MinConfidence:    0.5,
			CacheTTLSeconds:  3600,
			LanguagePriority: []string{"zh-CN", "ja-JP", "en-US"},
			TMDBBaseURL:      defaultTMDBBaseURL,
			BangumiBaseURL:   defaultBangumiBaseURL,
			WmdbBaseURL:      defaultWmdbBaseURL,
			ManualDir:        "metadata",
			NFOEnabled:       true,
			NFOSameNameOnly:  true,
		},
		Subtitles: Subtitles{
			ReuseMode:          "reuse_if_good",
			ReuseMinConfidence: 0.6,
			PreferredSrcLangs:  []string{"ja", "en"},
		},
		Audio: Audio{
			PreferredLangs:  []string{"ja", "en"},
			ExcludeKeywords: []string{"commentary", "comment"},
			TrackIndex:      -1,
		},
		Segment: Segment{
			Mode:               "post",
			MaxDurationSeconds: 3.5,
			MaxChars:           25,
			MinDurationSeconds: 1.0,
			MinChars:           2,
			MergeGapMS:         400,
		},
		Hotwords: Hotwords{
			Enabled:         true,
			UseGlossary:     true,
			UseTitleAliases: true,
			UseMetadata:     true,
			Weight:          4,
		},
		Source: Source{
			Disposition: "keep",
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: 10,
			JobCompleted:          true,
			JobFailed:             true,
			ASRFatal:              true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxBytes:      defaultLogMaxBytes,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultRetentionDays,
		},
		IPC: IPC{
			SocketPath: defaultSocketPath,
		},
		Eval: Eval{
			SampleRate: 0.1,
		},
	}
}
