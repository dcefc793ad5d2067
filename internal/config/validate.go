package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Critical failures here stop
// daemon startup; optional integrations validate only when enabled.
func (c *Config) Validate() error {
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateAdmission(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateASR(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateSegment(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	return nil
}

// ValidateForDaemon applies the additional checks required to run the daemon,
// on top of Validate. One-shot CLI use does not require watched roots.
func (c *Config) ValidateForDaemon() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Paths.WatchDirs) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/subweave/config.toml"
		}
		return fmt.Errorf("paths.watch_dirs is required. Edit %s (create with 'subweave config new')", defaultPath)
	}
	return c.ValidateASRCredentials()
}

// ValidateASRCredentials checks that the configured recognition backend is
// actually reachable: a command for the command backend, an API key for the
// cloud backend. Split from Validate so loading a bare default config still
// succeeds for read-only CLI commands.
func (c *Config) ValidateASRCredentials() error {
	if c.ASR.Backend == "cloud" && c.ASR.APIKey == "" {
		return errors.New("asr.api_key is required when asr.backend is cloud (or set ASR_API_KEY)")
	}
	if c.ASR.Backend == "command" && strings.TrimSpace(c.ASR.Command) == "" {
		return errors.New("asr.command is required when asr.backend is command")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.ScanIntervalSeconds <= 0 {
		return errors.New("watch.scan_interval_seconds must be positive")
	}
	if len(c.Watch.VideoExtensions) == 0 {
		return errors.New("watch.video_extensions must include at least one extension")
	}
	if strings.ContainsAny(c.Watch.TriggerBasename, "/\\") {
		return errors.New("watch.trigger_basename must be a bare file name")
	}
	return nil
}

func (c *Config) validateAdmission() error {
	if c.Admission.MinBytes < 0 {
		return errors.New("admission.min_bytes must be >= 0")
	}
	if c.Admission.StabilityDwellMS < 0 {
		return errors.New("admission.stability_dwell_ms must be >= 0")
	}
	if c.Admission.LockTTLSeconds <= 0 {
		return errors.New("admission.lock_ttl_seconds must be positive")
	}
	return nil
}

func (c *Config) validateQueue() error {
	return ensurePositiveMap(map[string]int{
		"queue.worker_concurrency": c.Queue.WorkerConcurrency,
		"queue.max_active_jobs":    c.Queue.MaxActiveJobs,
		"queue.ffmpeg_concurrency": c.Queue.FFmpegConcurrency,
	})
}

func (c *Config) validateASR() error {
	switch c.ASR.Backend {
	case "command", "cloud":
	default:
		return fmt.Errorf("asr.backend must be one of command, cloud (got %q)", c.ASR.Backend)
	}
	switch c.ASR.Mode {
	case "auto", "offline", "realtime":
	default:
		return fmt.Errorf("asr.mode must be one of auto, offline, realtime (got %q)", c.ASR.Mode)
	}
	switch c.ASR.HotwordMode {
	case "vocabulary", "param", "off":
	default:
		return fmt.Errorf("asr.hotword_mode must be one of vocabulary, param, off (got %q)", c.ASR.HotwordMode)
	}
	if c.ASR.ChunkMinSeconds > c.ASR.ChunkMaxSeconds {
		return errors.New("asr.chunk_min_seconds must not exceed asr.chunk_max_seconds")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	if !c.Translate.Enabled {
		return nil
	}
	if len(c.Translate.DestLangs) == 0 {
		return errors.New("translate.dest_langs must include at least one language when translate.enabled is true")
	}
	switch c.Translate.BatchMode {
	case "context", "bulk":
	default:
		return fmt.Errorf("translate.batch_mode must be one of context, bulk (got %q)", c.Translate.BatchMode)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.api_key is required when translate.enabled is true")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required when translate.enabled is true")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	switch c.Subtitles.ReuseMode {
	case "ignore", "reference", "reuse_if_good":
	default:
		return fmt.Errorf("subtitles.reuse_mode must be one of ignore, reference, reuse_if_good (got %q)", c.Subtitles.ReuseMode)
	}
	return nil
}

func (c *Config) validateSegment() error {
	switch c.Segment.Mode {
	case "auto", "post":
	default:
		return fmt.Errorf("segment.mode must be one of auto, post (got %q)", c.Segment.Mode)
	}
	if c.Segment.MinDurationSeconds > c.Segment.MaxDurationSeconds {
		return errors.New("segment.min_duration_seconds must not exceed segment.max_duration_seconds")
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Disposition {
	case "keep", "move", "delete":
	default:
		return fmt.Errorf("source.disposition must be one of keep, move, delete (got %q)", c.Source.Disposition)
	}
	if c.Source.Disposition == "move" && strings.TrimSpace(c.Source.MoveDir) == "" {
		return errors.New("source.move_dir must be set when source.disposition is move")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
