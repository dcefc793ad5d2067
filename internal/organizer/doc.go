// Package organizer decides what happens to the input video after its
// subtitles are produced: keep it in place, move it to a holding directory,
// or delete it.
package organizer
