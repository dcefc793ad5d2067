// Package asrcmd adapts a local transcription command to the recognizer
// interface so the daemon can run without a cloud vendor. The command
// receives a WAV path and prints a JSON transcript on stdout.
package asrcmd
