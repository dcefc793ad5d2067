package metadata

import (
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NFOInfo is the subset of a Kodi-style NFO sidecar the resolver consumes.
type NFOInfo struct {
	Type          string // movie | tv
	Title         string
	OriginalTitle string
	EpisodeTitle  string
	Year          int
	Season        int
	Episode       int
	ExternalIDs   map[string]string
}

type nfoUniqueID struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type nfoMovie struct {
	XMLName       xml.Name      `xml:"movie"`
	Title         string        `xml:"title"`
	OriginalTitle string        `xml:"originaltitle"`
	Year          int           `xml:"year"`
	UniqueIDs     []nfoUniqueID `xml:"uniqueid"`
}

type nfoEpisode struct {
	XMLName    xml.Name      `xml:"episodedetails"`
	Title      string        `xml:"title"`
	ShowTitle  string        `xml:"showtitle"`
	Season     int           `xml:"season"`
	Episode    int           `xml:"episode"`
	FirstAired string        `xml:"firstaired"`
	UniqueIDs  []nfoUniqueID `xml:"uniqueid"`
}

// ParseNFO reads one sidecar file. Both movie and episodedetails roots are
// recognized; anything else returns nil without error.
func ParseNFO(path string) (*NFOInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var movie nfoMovie
	if err := xml.Unmarshal(data, &movie); err == nil && movie.Title != "" {
		return &NFOInfo{
			Type:          "movie",
			Title:         movie.Title,
			OriginalTitle: movie.OriginalTitle,
			Year:          movie.Year,
			ExternalIDs:   uniqueIDMap(movie.UniqueIDs),
		}, nil
	}

	var episode nfoEpisode
	if err := xml.Unmarshal(data, &episode); err == nil && (episode.Title != "" || episode.Episode > 0) {
		info := &NFOInfo{
			Type:         "tv",
			Title:        episode.ShowTitle,
			EpisodeTitle: episode.Title,
			Season:       episode.Season,
			Episode:      episode.Episode,
			ExternalIDs:  uniqueIDMap(episode.UniqueIDs),
		}
		if len(episode.FirstAired) >= 4 {
			var year int
			for _, r := range episode.FirstAired[:4] {
				if r < '0' || r > '9' {
					year = 0
					break
				}
				year = year*10 + int(r-'0')
			}
			info.Year = year
		}
		return info, nil
	}
	return nil, nil
}

// FindNFO locates the sidecar for a video: the same-name .nfo first, then,
// unless sameNameOnly is set, a tvshow.nfo in the same directory.
func FindNFO(videoPath string, sameNameOnly bool) (*NFOInfo, error) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	candidates := []string{base + ".nfo"}
	if !sameNameOnly {
		candidates = append(candidates, filepath.Join(filepath.Dir(videoPath), "tvshow.nfo"))
	}
	for _, candidate := range candidates {
		info, err := ParseNFO(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}

func uniqueIDMap(ids []nfoUniqueID) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		key := strings.TrimSpace(id.Type)
		value := strings.TrimSpace(id.Value)
		if key != "" && value != "" {
			out[key] = value
		}
	}
	return out
}
