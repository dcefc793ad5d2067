// Package ratelimit gates outbound calls to external services with token
// buckets. Each service gets its own limiter; a zero rate disables limiting
// for that service.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"subweave/internal/config"
)

// Limiter blocks until a call slot is available or the context ends.
type Limiter interface {
	Wait(ctx context.Context) error
}

type noop struct{}

func (noop) Wait(context.Context) error { return nil }

type bucket struct {
	limiter *rate.Limiter
}

func (b bucket) Wait(ctx context.Context) error { return b.limiter.Wait(ctx) }

// New builds a limiter allowing rps calls per second with a burst of one.
// rps <= 0 returns a limiter that never blocks.
func New(rps float64) Limiter {
	if rps <= 0 {
		return noop{}
	}
	return bucket{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Set bundles the per-service limiters the pipeline shares.
type Set struct {
	ASR      Limiter
	LLM      Limiter
	Metadata Limiter
}

// NewSet constructs the shared limiters from configuration.
func NewSet(cfg *config.Config) *Set {
	return &Set{
		ASR:      New(cfg.ASR.RPS),
		LLM:      New(cfg.Translate.RPS),
		Metadata: New(cfg.Metadata.RPS),
	}
}
