package jobfiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Overrides carries operator requests from the N.job.json sidecar. Absent
// fields keep their zero values; unknown keys are ignored.
type Overrides struct {
	ASRMode                  string `json:"asr_mode"`
	SegmentMode              string `json:"segment_mode"`
	IgnoreSimplifiedSubtitle bool   `json:"ignore_simplified_subtitle"`
	UseExistingSubtitle      bool   `json:"use_existing_subtitle"`
	ForceOnce                bool   `json:"force_once"`
	ForceASR                 bool   `json:"force_asr"`
	ForceTranslate           bool   `json:"force_translate"`
}

// LoadOverrides reads the override sidecar. A missing file yields zero
// overrides; a malformed file is an error the caller logs and ignores.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Overrides{}, nil
		}
		return Overrides{}, fmt.Errorf("read overrides %s: %w", path, err)
	}
	var overrides Overrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return Overrides{}, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return overrides, nil
}

// ConsumeForceOnce removes the override sidecar after a successful run that
// honored force_once, so the next scan sees a clean slate.
func ConsumeForceOnce(path string, overrides Overrides) error {
	if !overrides.ForceOnce {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("consume overrides %s: %w", path, err)
	}
	return nil
}
