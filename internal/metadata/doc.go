// Package metadata resolves what a video file actually is. Filename
// inference, NFO sidecars, a YAML alias table, and manual overrides feed a
// query; weighted providers answer it; results merge into one WorkMetadata
// whose aliases and character names feed hotword building and translation
// prompts. A TTL cache bounds provider traffic.
package metadata
