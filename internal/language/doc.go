// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-1, ISO 639-3, display names,
// tag extraction, track-label guessing) are consolidated here so subtitle,
// audio, and recognition code compare languages with plain string equality.
// Code tables come from the embedded ISO 639-3 registry rather than a
// hand-maintained list.
package language
