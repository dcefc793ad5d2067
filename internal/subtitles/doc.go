// Package subtitles implements cue modeling, SRT parsing and formatting,
// structural validation, and presentation helpers (line wrapping, bilingual
// assembly). External files in other formats (.ass, .vtt) are converted to
// cues on read; the pipeline only ever writes SRT.
package subtitles
