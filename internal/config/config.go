package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchDirs []string `toml:"watch_dirs"`
	OutputDir string   `toml:"output_dir"`
	CacheDir  string   `toml:"cache_dir"`
	LogDir    string   `toml:"log_dir"`
	TmpDir    string   `toml:"tmp_dir"`
	EvalDir   string   `toml:"eval_dir"`
}

// Watch contains discovery configuration for the directory watcher.
type Watch struct {
	ScanIntervalSeconds int      `toml:"scan_interval_seconds"`
	Recursive           bool     `toml:"recursive"`
	VideoExtensions     []string `toml:"video_extensions"`
	TriggerBasename     string   `toml:"trigger_basename"`
	RescanCron          string   `toml:"rescan_cron"`
}

// Admission contains per-file gating configuration.
type Admission struct {
	MinBytes          int64 `toml:"min_bytes"`
	StabilityDwellMS  int   `toml:"stability_dwell_ms"`
	LockTTLSeconds    int   `toml:"lock_ttl_seconds"`
	OutputBesideVideo bool  `toml:"output_beside_video"`
}

// Queue contains dispatch and concurrency configuration.
type Queue struct {
	PriorityEnabled   bool `toml:"priority_enabled"`
	WorkerConcurrency int  `toml:"worker_concurrency"`
	MaxActiveJobs     int  `toml:"max_active_jobs"`
	FFmpegConcurrency int  `toml:"ffmpeg_concurrency"`
}

// ASR contains speech-recognition orchestration settings.
type ASR struct {
	Backend              string   `toml:"backend"` // command | cloud
	Mode                 string   `toml:"mode"`    // auto | offline | realtime
	Model                string   `toml:"model"`
	APIKey               string   `toml:"api_key"`
	BaseURL              string   `toml:"base_url"`
	Command              string   `toml:"command"`
	Language             string   `toml:"language"`
	SupportedLanguages   []string `toml:"supported_languages"`
	SampleRate           int      `toml:"sample_rate"`
	ChunkSeconds         int      `toml:"chunk_seconds"`
	ChunkMinSeconds      int      `toml:"chunk_min_seconds"`
	ChunkMaxSeconds      int      `toml:"chunk_max_seconds"`
	ChunkTarget          int      `toml:"chunk_target"`
	OverlapMS            int      `toml:"overlap_ms"`
	FailureRateThreshold float64  `toml:"failure_rate_threshold"`
	RealtimeRetry        int      `toml:"realtime_retry"`
	MaxFailures          int      `toml:"max_failures"`
	FailCooldownSeconds  int      `toml:"fail_cooldown_seconds"`
	HotwordMode          string   `toml:"hotword_mode"` // vocabulary | param | off
	TimeoutSeconds       int      `toml:"timeout_seconds"`
	PollIntervalSeconds  int      `toml:"poll_interval_seconds"`
	RPS                  float64  `toml:"rps"`
}

// Translate contains translation pipeline settings.
type Translate struct {
	Enabled           bool     `toml:"enabled"`
	SourceLang        string   `toml:"source_lang"`
	DestLangs         []string `toml:"dest_langs"`
	SimplifiedTarget  string   `toml:"simplified_target"`
	Bilingual         bool     `toml:"bilingual"`
	BatchMode         string   `toml:"batch_mode"` // context | bulk
	BatchLines        int      `toml:"batch_lines"`
	MaxConcurrent     int      `toml:"max_concurrent"`
	Polish            bool     `toml:"polish"`
	PolishBatchSize   int      `toml:"polish_batch_size"`
	MaxCharsPerLine   int      `toml:"max_chars_per_line"`
	CacheEnabled      bool     `toml:"cache_enabled"`
	GroupingGapMS     int      `toml:"grouping_gap_ms"`
	RPS               float64  `toml:"rps"`
	RetryMaxAttempts  int      `toml:"retry_max_attempts"`
}

// LLM contains shared chat-model connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Metadata contains resolver configuration.
type Metadata struct {
	Enabled           bool     `toml:"enabled"`
	MinConfidence     float64  `toml:"min_confidence"`
	CacheTTLSeconds   int      `toml:"cache_ttl_seconds"`
	LanguagePriority  []string `toml:"language_priority"`
	TMDBAPIKey        string   `toml:"tmdb_api_key"`
	TMDBBaseURL       string   `toml:"tmdb_base_url"`
	BangumiBaseURL    string   `toml:"bangumi_base_url"`
	WmdbBaseURL       string   `toml:"wmdb_base_url"`
	AliasFile         string   `toml:"alias_file"`
	ManualDir         string   `toml:"manual_dir"`
	NFOEnabled        bool     `toml:"nfo_enabled"`
	NFOSameNameOnly   bool     `toml:"nfo_same_name_only"`
	UseLLMForWorkInfo bool     `toml:"use_llm_for_work_info"`
	RPS               float64  `toml:"rps"`
}

// Subtitles contains track selection and reuse-gate configuration.
type Subtitles struct {
	ReuseMode          string   `toml:"reuse_mode"` // ignore | reference | reuse_if_good
	ReuseMinConfidence float64  `toml:"reuse_min_confidence"`
	PreferredSrcLangs  []string `toml:"preferred_src_langs"`
}

// Audio contains audio track selection configuration.
type Audio struct {
	PreferredLangs  []string `toml:"preferred_langs"`
	ExcludeKeywords []string `toml:"exclude_keywords"`
	TrackIndex      int      `toml:"track_index"` // -1 means unset
	TrackLang       string   `toml:"track_lang"`
}

// Segment contains segmentation thresholds.
type Segment struct {
	Mode               string  `toml:"mode"` // auto | post
	MaxDurationSeconds float64 `toml:"max_duration_seconds"`
	MaxChars           int     `toml:"max_chars"`
	MinDurationSeconds float64 `toml:"min_duration_seconds"`
	MinChars           int     `toml:"min_chars"`
	MergeGapMS         int     `toml:"merge_gap_ms"`
}

// ObjectStore contains upload configuration for offline recognition.
type ObjectStore struct {
	Dir              string `toml:"dir"`
	BaseURL          string `toml:"base_url"`
	SigningSecret    string `toml:"signing_secret"`
	SignedTTLSeconds int    `toml:"signed_ttl_seconds"`
}

// Hotwords contains vocabulary builder settings.
type Hotwords struct {
	Enabled         bool   `toml:"enabled"`
	UseGlossary     bool   `toml:"use_glossary"`
	GlossaryFile    string `toml:"glossary_file"`
	UseTitleAliases bool   `toml:"use_title_aliases"`
	UseMetadata     bool   `toml:"use_metadata"`
	Weight          int    `toml:"weight"`
}

// Source controls what happens to the input video after a successful run.
type Source struct {
	Disposition string `toml:"disposition"` // keep | move | delete
	MoveDir     string `toml:"move_dir"`
}

// Notifications contains webhook notification settings.
type Notifications struct {
	WebhookURL            string `toml:"webhook_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	JobCompleted          bool   `toml:"job_completed"`
	JobFailed             bool   `toml:"job_failed"`
	ASRFatal              bool   `toml:"asr_fatal"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	MaxBytes      int64  `toml:"max_bytes"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// IPC contains the daemon status socket configuration.
type IPC struct {
	SocketPath string `toml:"socket_path"`
}

// Eval contains evaluation sample collection settings.
type Eval struct {
	Collect    bool    `toml:"collect"`
	SampleRate float64 `toml:"sample_rate"`
}

// Config encapsulates all configuration values for subweave.
//
// Configuration sections by subsystem:
//   - Paths: watched roots and process directories
//   - Watch: discovery cadence, extensions, trigger sentinel
//   - Admission: stability, lock TTL, output placement
//   - Queue: priorities, worker pool, resource semaphores
//   - ASR: recognition backend, chunking, retry cascade
//   - Translate: destination languages, batching, polish
//   - LLM: shared chat-model connection settings
//   - Metadata: provider keys, alias file, NFO sidecars
//   - Subtitles: reuse gate mode and confidence floor
//   - Audio: audio track selection preferences
//   - Segment: cue segmentation thresholds
//   - ObjectStore: WAV upload target for offline recognition
//   - Hotwords: vocabulary builder inputs
//   - Source: input disposition after success
//   - Notifications, Logging, IPC, Eval
type Config struct {
	Paths         Paths         `toml:"paths"`
	Watch         Watch         `toml:"watch"`
	Admission     Admission     `toml:"admission"`
	Queue         Queue         `toml:"queue"`
	ASR           ASR           `toml:"asr"`
	Translate     Translate     `toml:"translate"`
	LLM           LLM           `toml:"llm"`
	Metadata      Metadata      `toml:"metadata"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Audio         Audio         `toml:"audio"`
	Segment       Segment       `toml:"segment"`
	ObjectStore   ObjectStore   `toml:"object_store"`
	Hotwords      Hotwords      `toml:"hotwords"`
	Source        Source        `toml:"source"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	IPC           IPC           `toml:"ipc"`
	Eval          Eval          `toml:"eval"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subweave/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/subweave/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subweave.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation. Watched
// roots are created on a best-effort basis so the daemon can start while
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.TmpDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, dir := range c.Paths.WatchDirs {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(dir, 0o755)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if err := os.MkdirAll(c.Paths.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", c.Paths.OutputDir, err)
		}
	}
	if c.Eval.Collect && strings.TrimSpace(c.Paths.EvalDir) != "" {
		if err := os.MkdirAll(c.Paths.EvalDir, 0o755); err != nil {
			return fmt.Errorf("create eval directory %q: %w", c.Paths.EvalDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for media extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// VideoExtensionSet returns the configured video extensions as a lookup set
// with leading dots and lowercase normalization applied.
func (c *Config) VideoExtensionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Watch.VideoExtensions))
	for _, ext := range c.Watch.VideoExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains common chat-model settings used across features.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// GetLLM returns the shared chat-model connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
