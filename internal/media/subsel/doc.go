// Package subsel picks the subtitle candidate a job may reuse instead of
// recognising audio. It considers embedded streams and external sibling
// files, prefers destination-language subtitles over source-language ones,
// and never offers an image-based track for reuse.
package subsel
