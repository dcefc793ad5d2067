package preflight

import (
	"context"

	"subweave/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, dir := range cfg.Paths.WatchDirs {
		results = append(results, CheckDirectoryAccess("Watch directory", dir))
	}
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Paths.TmpDir != "" {
		results = append(results, CheckDirectoryAccess("Tmp directory", cfg.Paths.TmpDir))
	}

	if cfg.Translate.Enabled {
		results = append(results, CheckLLM(ctx, "Translation LLM", cfg.GetLLM()))
	}
	results = append(results, CheckASRBackend(cfg.ASR))

	return results
}
