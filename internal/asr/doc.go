// Package asr turns extracted dialogue audio into timed sentences. It owns
// WAV chunking, the realtime/offline recognition cascade with per-chunk
// retries, and the stitching that reassembles chunk transcripts into one
// timeline. Concrete backends live in services; this package only sees the
// Recognizer and OfflineBackend interfaces.
package asr
