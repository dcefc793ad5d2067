package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subweave/internal/config"
	"subweave/internal/deps"
	"subweave/internal/services/llm"
)

// CheckLLM verifies that the chat-model API is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckASRBackend validates the configured recognition backend without
// spending vendor quota: the cloud backend needs credentials, the command
// backend needs a resolvable binary.
func CheckASRBackend(cfg config.ASR) Result {
	const name = "ASR backend"
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "cloud":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return Result{Name: name, Detail: "cloud backend requires asr.api_key"}
		}
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return Result{Name: name, Detail: "cloud backend requires asr.base_url"}
		}
		return Result{Name: name, Passed: true, Detail: "cloud credentials configured"}
	case "command", "":
		binary := deps.CommandName(cfg.Command)
		if binary == "" {
			return Result{Name: name, Detail: "command backend requires asr.command"}
		}
		statuses := deps.CheckBinaries([]deps.Requirement{{Name: name, Command: binary}})
		if len(statuses) == 1 && !statuses[0].Available {
			return Result{Name: name, Detail: statuses[0].Detail}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s available", binary)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the system-level dependencies for the given
// config. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     deps.ResolveFFmpegPath(cfg.FFmpegBinary()),
			Description: "Required for audio and subtitle extraction",
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(cfg.FFprobeBinary()),
			Description: "Required for media inspection",
		},
	}
	if strings.EqualFold(strings.TrimSpace(cfg.ASR.Backend), "command") {
		requirements = append(requirements, deps.Requirement{
			Name:        "ASR command",
			Command:     deps.CommandName(cfg.ASR.Command),
			Description: "Required for local speech recognition",
		})
	}
	return deps.CheckBinaries(requirements)
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
