package jobfiles

import (
	"path/filepath"
	"strings"
)

// Naming resolves every sibling file derived from one video. Suffix, when
// set, is inserted before marker extensions so libraries with per-language
// output conventions can keep markers apart.
type Naming struct {
	VideoPath string
	OutputDir string
	Base      string
	Suffix    string
}

// ResolveNaming builds the naming scheme for a video. When besideVideo is
// true outputs live next to the source; otherwise they live in outputDir.
func ResolveNaming(videoPath, outputDir string, besideVideo bool, suffix string) Naming {
	dir := filepath.Dir(videoPath)
	if !besideVideo && strings.TrimSpace(outputDir) != "" {
		dir = outputDir
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return Naming{VideoPath: videoPath, OutputDir: dir, Base: base, Suffix: strings.TrimSpace(suffix)}
}

// marked joins base, the optional suffix, and an extension into a path.
func (n Naming) marked(ext string) string {
	name := n.Base
	if n.Suffix != "" {
		name += "." + n.Suffix
	}
	return filepath.Join(n.OutputDir, name+ext)
}

// LockPath is the in-flight marker holding the acquisition epoch.
func (n Naming) LockPath() string { return n.marked(".lock") }

// DonePath is the terminal success marker.
func (n Naming) DonePath() string { return n.marked(".done") }

// SourceSRTPath holds the source-language cues.
func (n Naming) SourceSRTPath() string { return n.marked(".srt") }

// ArchivedPath parks a file so admission skips it until an operator removes
// the marker.
func (n Naming) ArchivedPath() string {
	return filepath.Join(n.OutputDir, n.Base+".archived")
}

// ASRFailedPath records recognition failures as JSON.
func (n Naming) ASRFailedPath() string {
	return filepath.Join(n.OutputDir, n.Base+".asr_failed")
}

// OverridePath is the operator override sidecar.
func (n Naming) OverridePath() string {
	return filepath.Join(n.VideoDir(), n.Base+".job.json")
}

// VideoDir returns the directory holding the source video.
func (n Naming) VideoDir() string { return filepath.Dir(n.VideoPath) }

// TranslatedSRTPath names the output for one destination language.
func (n Naming) TranslatedSRTPath(lang string) string {
	return filepath.Join(n.OutputDir, n.Base+"."+lang+".srt")
}

// LLMTranslatedSRTPath names the machine-translation copy kept distinct from
// a reused human subtitle in the same language.
func (n Naming) LLMTranslatedSRTPath(lang string) string {
	return filepath.Join(n.OutputDir, n.Base+".llm."+lang+".srt")
}

// BilingualSRTPath names the combined source+translation output.
func (n Naming) BilingualSRTPath() string {
	return filepath.Join(n.OutputDir, n.Base+".bi.srt")
}

// TranslateFailedLogPath names the append-only failure log for one language.
func (n Naming) TranslateFailedLogPath(lang string) string {
	name := n.Base + ".translate_failed"
	if lang != "" {
		name += "." + lang
	}
	return filepath.Join(n.OutputDir, name+".log")
}

// TranslateFailedGlob matches every per-language failure log for the video.
func (n Naming) TranslateFailedGlob() string {
	return filepath.Join(n.OutputDir, n.Base+".translate_failed*")
}

// RunMetaPath names the per-run JSON meta file.
func (n Naming) RunMetaPath(runID string) string {
	return filepath.Join(n.OutputDir, n.Base+".subweave.run."+runID+".json")
}

// RunLogPath names the per-run NDJSON event log.
func (n Naming) RunLogPath(runID string) string {
	return filepath.Join(n.OutputDir, n.Base+".subweave.run."+runID+".log")
}
