package media

import (
	"context"

	"subweave/internal/language"
	"subweave/internal/media/ffprobe"
	"subweave/internal/services"
)

// SubtitleTrack describes an embedded subtitle stream.
type SubtitleTrack struct {
	StreamIndex   int    // container stream index
	SubtitleIndex int    // position among subtitle streams, for -map 0:s:N
	Codec         string
	Language      string // normalized, may be empty
	Title         string
	Forced        bool
	Default       bool
	ImageBased    bool // bitmap codecs cannot be extracted as text
}

// Probe summarizes the container facts the pipeline decides on.
type Probe struct {
	Path            string
	DurationSeconds float64
	AudioStreams    []ffprobe.Stream
	SubtitleTracks  []SubtitleTrack
	Result          ffprobe.Result
}

// imageSubtitleCodecs cannot be converted to text. The tracks stay visible
// for selection bookkeeping but are never extracted.
var imageSubtitleCodecs = map[string]struct{}{
	"hdmv_pgs_subtitle": {},
	"dvd_subtitle":      {},
	"dvb_subtitle":      {},
	"xsub":              {},
}

// Inspect probes a video file and classifies its streams.
func Inspect(ctx context.Context, ffprobeBinary, path string) (Probe, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return Probe{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", "ffprobe failed", err)
	}
	return fromResult(path, result)
}

func fromResult(path string, result ffprobe.Result) (Probe, error) {
	if result.VideoStreamCount() == 0 {
		return Probe{}, services.Wrap(services.ErrValidation, "probe", "inspect", "file has no video stream", nil)
	}

	probe := Probe{
		Path:            path,
		DurationSeconds: result.DurationSeconds(),
		Result:          result,
	}
	subtitleIndex := 0
	for _, stream := range result.Streams {
		switch stream.CodecType {
		case "audio":
			probe.AudioStreams = append(probe.AudioStreams, stream)
		case "subtitle":
			_, image := imageSubtitleCodecs[stream.CodecName]
			track := SubtitleTrack{
				StreamIndex:   stream.Index,
				SubtitleIndex: subtitleIndex,
				Codec:         stream.CodecName,
				Language:      trackLanguage(stream),
				Title:         trackTitle(stream.Tags),
				Forced:        stream.Disposition != nil && stream.Disposition["forced"] == 1,
				Default:       stream.Disposition != nil && stream.Disposition["default"] == 1,
				ImageBased:    image,
			}
			subtitleIndex++
			probe.SubtitleTracks = append(probe.SubtitleTracks, track)
		}
	}
	return probe, nil
}

// trackLanguage resolves a subtitle stream's language from its tags, falling
// back to a title-label guess.
func trackLanguage(stream ffprobe.Stream) string {
	if lang := language.ExtractFromTags(stream.Tags); lang != "" {
		return language.Normalize(lang)
	}
	if code, ok := language.GuessFromLabel(trackTitle(stream.Tags)); ok {
		return language.Normalize(code)
	}
	return ""
}

func trackTitle(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"title", "TITLE"} {
		if value, ok := tags[key]; ok {
			return value
		}
	}
	return ""
}
