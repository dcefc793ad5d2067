package deps

import (
	"os/exec"
	"strings"
)

// ResolveBinary returns the configured command when set, resolved through
// PATH when possible, and the fallback name otherwise.
func ResolveBinary(configured, fallback string) string {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = fallback
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}
	return name
}

// ResolveFFmpegPath reports the ffmpeg binary audio and subtitle extraction
// will execute.
func ResolveFFmpegPath(configured string) string {
	return ResolveBinary(configured, "ffmpeg")
}

// ResolveFFprobePath reports the ffprobe binary container inspection will
// execute.
func ResolveFFprobePath(configured string) string {
	return ResolveBinary(configured, "ffprobe")
}

// CommandName extracts the executable from a shell-style command string so
// availability checks can probe it.
func CommandName(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
