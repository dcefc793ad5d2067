package metadata

import (
	"context"
	"log/slog"
	"time"

	"subweave/internal/logging"
)

// Provider is one weighted metadata backend.
type Provider interface {
	Name() string
	Weight() float64
	Resolve(ctx context.Context, query WorkQuery) (*WorkMetadata, error)
}

// Limiter gates outbound provider calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Resolver fans a query out to the configured providers and merges their
// answers. Provider failures degrade: a failing provider simply does not
// participate in the merge.
type Resolver struct {
	providers     []Provider
	cache         *Cache
	limiter       Limiter
	minConfidence float64
	logger        *slog.Logger
}

// NewResolver builds a resolver over the given providers, in call order.
func NewResolver(providers []Provider, minConfidence float64, cacheTTL time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		providers:     providers,
		cache:         NewCache(cacheTTL),
		minConfidence: minConfidence,
		logger:        logging.NewComponentLogger(logger, "metadata"),
	}
}

// WithLimiter applies a shared rate limiter to provider calls.
func (r *Resolver) WithLimiter(limiter Limiter) { r.limiter = limiter }

// Resolve answers a query from cache or by asking every provider. A nil
// result with nil error means no provider produced a confident answer.
func (r *Resolver) Resolve(ctx context.Context, query WorkQuery) (*WorkMetadata, error) {
	key := QueryKey(query)
	if cached, hit := r.cache.Get(key); hit {
		return cached, nil
	}

	results := make([]Weighted, 0, len(r.providers))
	for _, provider := range r.providers {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		meta, err := provider.Resolve(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("metadata provider failed",
				logging.String("provider", provider.Name()), logging.Error(err))
			continue
		}
		if meta == nil {
			continue
		}
		meta.Sources = append(meta.Sources, provider.Name())
		results = append(results, Weighted{Meta: *meta, Weight: provider.Weight() * meta.Confidence})
	}

	merged := Merge(results, r.minConfidence)
	r.cache.Put(key, merged)
	return merged, nil
}
