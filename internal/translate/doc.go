// Package translate turns source-language cues into destination-language
// cues through a chat model. Cues are grouped into translation contexts,
// batched per the configured mode, and guarded by a line-count invariant
// with per-item retry and source-text fallback. A SQLite cache keyed by a
// deterministic hash of (source lang, destination lang, text) short-circuits
// repeat work; the optional polish pass refines wording without changing
// line counts.
package translate
