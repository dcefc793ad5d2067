// Package audio selects the dialogue track to transcribe from a media file.
//
// This package depends only on internal/media/ffprobe and internal/language
// and could be extracted as a standalone library alongside ffprobe.
//
// The selection algorithm drops commentary tracks (by disposition flag or
// title keyword), then ranks candidates by:
//  1. Preferred-language order from configuration
//  2. Default disposition flag
//  3. Channel count (main mixes beat downmixes)
//
// Explicit overrides bypass scoring: a configured track index picks the nth
// audio stream outright, a configured track language restricts candidates.
//
// Primary entry point:
//   - Select: analyzes streams and returns the track for recognition
package audio
