package metadata

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"subweave/internal/logging"
	"subweave/internal/textutil"
)

// WorkInfo sources, from weakest to strongest.
const (
	SourceNone    = "none"
	SourcePath    = "path_only"
	SourceLLM     = "llm"
	SourcePathLLM = "path+llm"
)

var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,4})`)
	episodeOnlyPattern   = regexp.MustCompile(`(?i)(?:EP?|第)\s*(\d{1,4})(?:话|話|集)?`)
)

// InferFromPath derives a best-effort WorkInfo from the video path alone.
func InferFromPath(path string) WorkInfo {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := WorkInfo{Source: SourceNone}

	if m := seasonEpisodePattern.FindStringSubmatch(base); m != nil {
		info.Season, _ = strconv.Atoi(m[1])
		info.Episode, _ = strconv.Atoi(m[2])
		info.Type = "tv"
	} else if m := episodeOnlyPattern.FindStringSubmatch(base); m != nil {
		info.Episode, _ = strconv.Atoi(m[1])
		info.Type = "tv"
	}

	info.Year = textutil.ExtractYear(base)
	if info.Type == "" && info.Year > 0 {
		info.Type = "movie"
	}

	title := textutil.CleanTitle(base)
	if info.Year > 0 {
		title = strings.Join(strings.Fields(strings.ReplaceAll(title, strconv.Itoa(info.Year), " ")), " ")
	}
	info.Title = title
	if info.Title != "" {
		info.Source = SourcePath
		info.Confidence = 0.4
		if info.Episode > 0 || info.Year > 0 {
			info.Confidence = 0.7
		}
	}
	return info
}

// WorkInfoModel asks a chat model to read a release filename. Optional: a
// nil model skips refinement.
type WorkInfoModel interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const workInfoSystemPrompt = `You identify media releases from file names.
Reply with JSON only: {"title": string, "season": int, "episode": int, "type": "movie"|"tv"}.
Use 0 for unknown numbers and the original-language title when you can.`

type workInfoReply struct {
	Title   string `json:"title"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Type    string `json:"type"`
}

// RefineWithLLM merges a chat-model reading of the filename into the
// path-derived info. Model failures degrade to the path result.
func RefineWithLLM(ctx context.Context, model WorkInfoModel, path string, info WorkInfo, logger *slog.Logger) WorkInfo {
	if model == nil {
		return info
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	content, err := model.CompleteJSON(ctx, workInfoSystemPrompt, filepath.Base(path))
	if err != nil {
		logger.Warn("work info llm refinement failed", logging.Error(err))
		return info
	}
	var reply workInfoReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		logger.Warn("work info llm reply unparseable", logging.Error(err))
		return info
	}
	if strings.TrimSpace(reply.Title) == "" {
		return info
	}

	refined := info
	refined.Title = strings.TrimSpace(reply.Title)
	if reply.Season > 0 {
		refined.Season = reply.Season
	}
	if reply.Episode > 0 {
		refined.Episode = reply.Episode
	}
	if reply.Type == "movie" || reply.Type == "tv" {
		refined.Type = reply.Type
	}
	if info.Source == SourcePath {
		refined.Source = SourcePathLLM
		refined.Confidence = 0.85
	} else {
		refined.Source = SourceLLM
		refined.Confidence = 0.6
	}
	return refined
}

// ApplyNFO overlays sidecar facts onto the inferred info. NFO data is
// operator-provided and outranks inference.
func ApplyNFO(info WorkInfo, nfo *NFOInfo) WorkInfo {
	if nfo == nil {
		return info
	}
	if nfo.Title != "" {
		info.Title = nfo.Title
	}
	if nfo.Year > 0 {
		info.Year = nfo.Year
	}
	if nfo.Season > 0 {
		info.Season = nfo.Season
	}
	if nfo.Episode > 0 {
		info.Episode = nfo.Episode
	}
	if nfo.Type != "" {
		info.Type = nfo.Type
	}
	if info.Source == "" || info.Source == SourceNone {
		info.Source = "nfo"
	} else if !strings.HasSuffix(info.Source, "+nfo") {
		info.Source += "+nfo"
	}
	if info.Confidence < 0.9 {
		info.Confidence = 0.9
	}
	return info
}
