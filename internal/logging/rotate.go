package logging

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// RotatingWriter appends to a log file and rotates it once it would exceed
// maxBytes. Rotated files keep numbered suffixes (file.1 is the newest
// backup); at most maxBackups are retained.
type RotatingWriter struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	maxBackups int
	file       *os.File
	size       int64
}

// NewRotatingWriter opens path for appending with size rotation enabled.
// maxBytes must be positive. maxBackups of zero keeps no backups; rotation
// then truncates the file in place.
func NewRotatingWriter(path string, maxBytes int64, maxBackups int) (*RotatingWriter, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("rotating writer: maxBytes must be positive, got %d", maxBytes)
	}
	if maxBackups < 0 {
		maxBackups = 0
	}
	w := &RotatingWriter{path: path, maxBytes: maxBytes, maxBackups: maxBackups}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.file = file
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	// Rotate before the write that would cross the cap, unless a single
	// record is itself larger than the cap.
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil

	if w.maxBackups == 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return w.open()
	}

	oldest := w.backupPath(w.maxBackups)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := w.maxBackups - 1; i >= 1; i-- {
		from := w.backupPath(i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, w.backupPath(i+1)); err != nil {
			return err
		}
	}
	if err := os.Rename(w.path, w.backupPath(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return w.open()
}

func (w *RotatingWriter) backupPath(index int) string {
	return w.path + "." + strconv.Itoa(index)
}

// Close releases the underlying file handle.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
