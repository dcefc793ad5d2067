package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"subweave/internal/fileutil"
	"subweave/internal/logging"
)

// collectEvalSample copies the (source, reference, candidate) triple into
// the evaluation directory. Primary outputs are never touched; every copy
// failure degrades to a log line.
func (p *Pipeline) collectEvalSample(j *job) {
	evalDir := strings.TrimSpace(p.cfg.Paths.EvalDir)
	if evalDir == "" {
		return
	}
	sampleDir := filepath.Join(evalDir, j.naming.Base)
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		j.logger.Warn("eval sample directory unavailable", logging.Error(err))
		return
	}

	copyInto := func(src, name string) {
		if src == "" {
			return
		}
		if _, err := os.Stat(src); err != nil {
			return
		}
		if err := fileutil.CopyFile(src, filepath.Join(sampleDir, name)); err != nil {
			j.logger.Warn("eval sample copy failed",
				logging.String("src", src),
				logging.Error(err))
		}
	}

	copyInto(j.naming.SourceSRTPath(), "source.srt")
	copyInto(j.reference, "reference"+suffixOf(j.reference))
	for _, out := range j.outputs {
		if out == j.naming.SourceSRTPath() || out == j.reference {
			continue
		}
		copyInto(out, "candidate"+suffixOf(out))
	}
	j.logger.Info("eval sample collected", logging.String("dir", sampleDir))
}

// suffixOf keeps the language-bearing tail of an output name, e.g.
// "movie.zh.srt" contributes ".zh.srt".
func suffixOf(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[i:]
	}
	return ".srt"
}
