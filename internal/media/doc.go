// Package media probes video containers and extracts the streams the
// pipeline consumes: the dialogue audio as mono WAV for recognition, and
// embedded subtitle tracks as SRT for reuse. Probing wraps the ffprobe
// subpackage; extraction shells out to ffmpeg.
package media
