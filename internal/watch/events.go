package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"subweave/internal/logging"
)

// startEventTail subscribes to filesystem events on every root and feeds
// matching files into the emit callback as they appear. In recursive mode
// newly created directories are added to the watch set. The returned
// watcher is owned by the caller.
func (w *Watcher) startEventTail(ctx context.Context) (*fsnotify.Watcher, error) {
	tail, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range w.roots {
		if err := w.addWatchTree(tail, root); err != nil {
			w.logger.Warn("event subscription failed for root",
				logging.String("root", root), logging.Error(err))
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-tail.Events:
				if !ok {
					return
				}
				w.handleEvent(tail, event)
			case err, ok := <-tail.Errors:
				if !ok {
					return
				}
				w.logger.Warn("filesystem event error", logging.Error(err))
			}
		}
	}()
	return tail, nil
}

// handleEvent routes one filesystem event. Files are delivered on the
// close-write analogue (Create after a move-in, Write for local copies);
// trigger sentinels force a full scan.
func (w *Watcher) handleEvent(tail *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	if name := strings.TrimSpace(w.cfg.TriggerBasename); name != "" && filepath.Base(event.Name) == name {
		if w.consumeTriggerFiles() {
			w.TriggerScan()
		}
		return
	}

	if event.Op.Has(fsnotify.Create) && w.cfg.Recursive {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addWatchTree(tail, event.Name)
			// A directory moved in may already contain videos the event
			// stream never saw.
			w.TriggerScan()
			return
		}
	}

	if w.matches(event.Name) {
		w.emit(event.Name)
	}
}

// addWatchTree registers a directory, descending when recursive mode is on.
func (w *Watcher) addWatchTree(tail *fsnotify.Watcher, root string) error {
	if !w.cfg.Recursive {
		return tail.Add(root)
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if addErr := tail.Add(path); addErr != nil {
				w.logger.Warn("event subscription failed for directory",
					logging.String("dir", path), logging.Error(addErr))
			}
		}
		return nil
	})
}
