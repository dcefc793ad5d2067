package workflow

import (
	"context"

	"golang.org/x/sync/semaphore"

	"subweave/internal/media"
	"subweave/internal/pipeline"
)

// GateFFmpeg wraps the media-facing pipeline dependencies with a shared
// semaphore so the daemon never runs more than limit concurrent ffmpeg or
// ffprobe processes, whatever the worker count.
func GateFFmpeg(deps pipeline.Deps, limit int) pipeline.Deps {
	sem := semaphore.NewWeighted(int64(atLeastOne(limit)))
	if deps.Prober != nil {
		deps.Prober = gatedProber{sem: sem, inner: deps.Prober}
	}
	if deps.AudioExtractor != nil {
		deps.AudioExtractor = gatedAudio{sem: sem, inner: deps.AudioExtractor}
	}
	if deps.SubtitleExtractor != nil {
		deps.SubtitleExtractor = gatedSubtitle{sem: sem, inner: deps.SubtitleExtractor}
	}
	return deps
}

type gatedProber struct {
	sem   *semaphore.Weighted
	inner pipeline.Prober
}

func (g gatedProber) Inspect(ctx context.Context, path string) (media.Probe, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return media.Probe{}, err
	}
	defer g.sem.Release(1)
	return g.inner.Inspect(ctx, path)
}

type gatedAudio struct {
	sem   *semaphore.Weighted
	inner pipeline.AudioExtractor
}

func (g gatedAudio) ExtractAudioWAV(ctx context.Context, videoPath string, audioIndex, sampleRate int, outPath string) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return g.inner.ExtractAudioWAV(ctx, videoPath, audioIndex, sampleRate, outPath)
}

type gatedSubtitle struct {
	sem   *semaphore.Weighted
	inner pipeline.SubtitleExtractor
}

func (g gatedSubtitle) ExtractSubtitleSRT(ctx context.Context, videoPath string, subtitleIndex int, outPath string) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return g.inner.ExtractSubtitleSRT(ctx, videoPath, subtitleIndex, outPath)
}
