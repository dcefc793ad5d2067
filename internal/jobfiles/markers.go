package jobfiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AcquireLock creates the lock marker with exclusive-create semantics and
// writes the acquisition epoch into it. It reports false when another
// process already holds the lock.
func AcquireLock(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create lock %s: %w", path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(strconv.FormatInt(time.Now().Unix(), 10) + "\n"); err != nil {
		return false, fmt.Errorf("write lock %s: %w", path, err)
	}
	return true, nil
}

// ReleaseLock removes the lock marker. A missing marker is not an error.
func ReleaseLock(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock %s: %w", path, err)
	}
	return nil
}

// MarkerAge returns how long ago the marker was last written. ok is false
// when the marker does not exist.
func MarkerAge(path string) (time.Duration, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}

// WriteDone writes the terminal success marker.
func WriteDone(path string) error {
	return os.WriteFile(path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}

// Exists reports whether a marker file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ASRFailure is the JSON body of the asr_failed marker.
type ASRFailure struct {
	Count     int    `json:"count"`
	Timestamp string `json:"ts"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
	Fatal     bool   `json:"fatal"`
}

// ReadASRFailure parses the asr_failed marker. A missing file yields a zero
// record with ok false; a corrupt file is treated as one prior failure so a
// bad write never blocks recovery.
func ReadASRFailure(path string) (ASRFailure, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ASRFailure{}, false
	}
	var failure ASRFailure
	if err := json.Unmarshal(data, &failure); err != nil {
		return ASRFailure{Count: 1}, true
	}
	return failure, true
}

// RecordASRFailure increments the failure count for a recognition stage and
// marks the record fatal once maxFailures is reached.
func RecordASRFailure(path, stage string, cause error, maxFailures int) (ASRFailure, error) {
	failure, _ := ReadASRFailure(path)
	failure.Count++
	failure.Timestamp = time.Now().UTC().Format(time.RFC3339)
	failure.Stage = stage
	if cause != nil {
		failure.Error = cause.Error()
	}
	if maxFailures > 0 && failure.Count >= maxFailures {
		failure.Fatal = true
	}
	data, err := json.Marshal(failure)
	if err != nil {
		return failure, fmt.Errorf("encode asr failure: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return failure, fmt.Errorf("write asr failure %s: %w", path, err)
	}
	return failure, nil
}

// ClearASRFailure removes the asr_failed marker if present.
func ClearASRFailure(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove asr failure %s: %w", path, err)
	}
	return nil
}

// AppendTranslateFailure appends one failure record to the per-language log.
func AppendTranslateFailure(path, detail string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open translate failure log %s: %w", path, err)
	}
	defer file.Close()
	line := time.Now().UTC().Format(time.RFC3339) + "\t" + detail + "\n"
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append translate failure: %w", err)
	}
	return nil
}

// HasTranslateFailures reports whether any per-language failure log exists
// for the naming scheme.
func HasTranslateFailures(n Naming) bool {
	matches, err := filepath.Glob(n.TranslateFailedGlob())
	return err == nil && len(matches) > 0
}

// ClearTranslateFailures removes every per-language failure log.
func ClearTranslateFailures(n Naming) error {
	matches, err := filepath.Glob(n.TranslateFailedGlob())
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", match, err)
		}
	}
	return nil
}
