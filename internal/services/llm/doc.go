// Package llm provides a chat client for OpenAI-compatible completion APIs.
//
// This package is used by:
//   - Translate stage: batch subtitle translation and the optional polish pass
//   - Metadata resolver: disambiguation prompts when providers disagree
//
// # Configuration
//
// Requires api_key and model, optionally base_url and timeout. The base URL
// points at a chat-completions endpoint; any OpenAI-compatible provider
// works.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive plain text.
// Client.CompleteJSON: same, with a JSON response format constraint.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
//
// # Fallback
//
// Translation treats client errors as batch failures: the orchestrator
// retries items individually and falls back to source text. The polish pass
// and metadata prompts degrade to a no-op on error.
package llm
