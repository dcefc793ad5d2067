// Package textutil provides text processing utilities for title matching and
// filename sanitization.
//
// The primary use cases are:
//   - Cleaning and normalizing release file names into comparable work titles
//   - Scoring title similarity for metadata candidate ranking
//   - Sanitizing filenames for safe filesystem use
//
// Title similarity builds on term-frequency fingerprints for Latin titles and
// rune-bigram overlap for CJK titles, so mixed-script libraries rank sensibly
// without language-specific tokenizers.
package textutil
