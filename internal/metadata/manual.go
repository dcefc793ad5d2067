package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// manualRecord is the operator-authored override JSON.
type manualRecord struct {
	TitleOriginal  string            `json:"title_original"`
	TitleLocalized map[string]string `json:"title_localized"`
	Type           string            `json:"type"`
	Year           int               `json:"year"`
	Season         int               `json:"season"`
	Episode        int               `json:"episode"`
	EpisodeTitle   map[string]string `json:"episode_title"`
	Aliases        []string          `json:"aliases"`
	Characters     []struct {
		Name    string            `json:"name"`
		Aliases map[string]string `json:"aliases"`
	} `json:"characters"`
	ExternalIDs map[string]string `json:"external_ids"`
}

// LoadManual looks for an operator override next to the output directory
// (<outputDir>/<manualDir>/<base>.manual.json). A hit bypasses providers
// entirely with confidence 1.0.
func LoadManual(videoPath, outputDir, manualDir string) (*WorkMetadata, error) {
	if strings.TrimSpace(manualDir) == "" {
		manualDir = "metadata"
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	path := filepath.Join(outputDir, manualDir, base+".manual.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manual metadata %s: %w", path, err)
	}
	var record manualRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse manual metadata %s: %w", path, err)
	}
	if strings.TrimSpace(record.TitleOriginal) == "" {
		return nil, fmt.Errorf("manual metadata %s: title_original required", path)
	}

	meta := &WorkMetadata{
		TitleOriginal:  record.TitleOriginal,
		TitleLocalized: record.TitleLocalized,
		Type:           record.Type,
		Year:           record.Year,
		Season:         record.Season,
		Episode:        record.Episode,
		EpisodeTitle:   record.EpisodeTitle,
		Aliases:        record.Aliases,
		ExternalIDs:    record.ExternalIDs,
		Confidence:     1.0,
		Sources:        []string{"manual"},
	}
	for _, character := range record.Characters {
		if strings.TrimSpace(character.Name) == "" {
			continue
		}
		meta.Characters = append(meta.Characters, Character{Name: character.Name, Aliases: character.Aliases})
	}
	return meta, nil
}
