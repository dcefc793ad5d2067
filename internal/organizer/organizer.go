package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subweave/internal/config"
	"subweave/internal/fileutil"
	"subweave/internal/logging"
	"subweave/internal/services"
	"subweave/internal/textutil"
)

// Disposition policies applied to the source video after a successful run.
const (
	DispositionKeep   = "keep"
	DispositionMove   = "move"
	DispositionDelete = "delete"
)

// Organizer applies the source disposition policy once a job has produced
// its subtitles. Subtitle outputs and markers are never touched; only the
// input video moves.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an organizer.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{cfg: cfg, logger: logger.With(logging.String("component", "organizer"))}
}

// DisposeSource applies the configured policy to the finished video and
// returns its final location. Keep and unknown policies leave the file in
// place; move relocates it into the move directory; delete removes it and
// returns an empty path.
func (o *Organizer) DisposeSource(ctx context.Context, videoPath string) (string, error) {
	logger := logging.WithContext(ctx, o.logger)

	switch strings.TrimSpace(o.cfg.Source.Disposition) {
	case DispositionMove:
		return o.moveSource(logger, videoPath)
	case DispositionDelete:
		if err := os.Remove(videoPath); err != nil {
			return videoPath, services.Wrap(services.ErrValidation, "organizer", "delete source",
				"could not delete finished video", err)
		}
		logger.Info("source deleted", logging.String("video", videoPath))
		return "", nil
	default:
		return videoPath, nil
	}
}

func (o *Organizer) moveSource(logger *slog.Logger, videoPath string) (string, error) {
	moveDir := strings.TrimSpace(o.cfg.Source.MoveDir)
	if moveDir == "" {
		return videoPath, services.Wrap(services.ErrConfiguration, "organizer", "move source",
			"source.move_dir is required when disposition is move", nil)
	}
	if err := os.MkdirAll(moveDir, 0o755); err != nil {
		return videoPath, services.Wrap(services.ErrValidation, "organizer", "move source",
			"could not create move directory", err)
	}

	base := textutil.SanitizeFileName(filepath.Base(videoPath))
	if base == "" {
		base = filepath.Base(videoPath)
	}
	target := uniquePath(filepath.Join(moveDir, base))
	if err := fileutil.MoveFile(videoPath, target); err != nil {
		return videoPath, services.Wrap(services.ErrValidation, "organizer", "move source",
			"could not relocate finished video", err)
	}
	logger.Info("source moved",
		logging.String("video", videoPath),
		logging.String("target", target))
	return target, nil
}

// uniquePath avoids clobbering an existing file in the move directory by
// appending a numeric suffix before the extension.
func uniquePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}
