package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"subweave/internal/config"
	"subweave/internal/logging"
)

// EmitFunc receives each discovered candidate path. Duplicate suppression
// happens downstream in the queue's pending set.
type EmitFunc func(path string)

// Watcher coalesces the discovery sources for the configured roots.
type Watcher struct {
	cfg     config.Watch
	roots   []string
	exts    map[string]struct{}
	emit    EmitFunc
	logger  *slog.Logger
	trigger chan struct{}
}

// New builds a watcher. The emit callback runs on watcher goroutines and
// must not block for long.
func New(cfg *config.Config, logger *slog.Logger, emit EmitFunc) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		cfg:     cfg.Watch,
		roots:   cfg.Paths.WatchDirs,
		exts:    cfg.VideoExtensionSet(),
		emit:    emit,
		logger:  logging.NewComponentLogger(logger, "watch"),
		trigger: make(chan struct{}, 1),
	}
}

// TriggerScan requests an immediate full scan. Safe from any goroutine;
// coalesces when a request is already queued.
func (w *Watcher) TriggerScan() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run drives the periodic scan loop and the event tail until ctx ends. The
// first scan runs immediately.
func (w *Watcher) Run(ctx context.Context) error {
	interval := time.Duration(w.cfg.ScanIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}

	tail, err := w.startEventTail(ctx)
	if err != nil {
		w.logger.Warn("filesystem event tail unavailable, relying on scans", logging.Error(err))
	} else {
		defer tail.Close()
	}

	if schedule := strings.TrimSpace(w.cfg.RescanCron); schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(schedule, w.TriggerScan); err != nil {
			w.logger.Warn("invalid rescan cron expression, ignoring",
				logging.String("cron", schedule), logging.Error(err))
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.ScanOnce()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.ScanOnce()
		case <-w.trigger:
			w.ScanOnce()
		}
	}
}

// ScanOnce traverses every root and emits matching files. It consumes
// trigger sentinels first so an operator request is honored within one pass.
// It returns the number of candidates emitted.
func (w *Watcher) ScanOnce() int {
	w.consumeTriggerFiles()
	emitted := 0
	for _, root := range w.roots {
		emitted += w.scanRoot(root)
	}
	w.logger.Debug("scan pass complete", logging.Int("candidates", emitted))
	return emitted
}

func (w *Watcher) scanRoot(root string) int {
	emitted := 0
	if w.cfg.Recursive {
		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			if w.matches(path) {
				w.emit(path)
				emitted++
			}
			return nil
		})
		return emitted
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		w.logger.Warn("scan root unreadable", logging.String("root", root), logging.Error(err))
		return 0
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if w.matches(path) {
			w.emit(path)
			emitted++
		}
	}
	return emitted
}

// consumeTriggerFiles deletes any trigger sentinel found inside a root and
// reports whether one existed.
func (w *Watcher) consumeTriggerFiles() bool {
	name := strings.TrimSpace(w.cfg.TriggerBasename)
	if name == "" {
		return false
	}
	found := false
	for _, root := range w.roots {
		sentinel := filepath.Join(root, name)
		if err := os.Remove(sentinel); err == nil {
			w.logger.Info("scan trigger file consumed", logging.String("path", sentinel))
			found = true
		} else if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("trigger file removal failed", logging.String("path", sentinel), logging.Error(err))
		}
	}
	return found
}

func (w *Watcher) matches(path string) bool {
	_, ok := w.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}
