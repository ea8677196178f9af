package model

import (
	"context"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/chase-predictor/internal/features"
)

// CachedScorer memoises an inner scorer's answers keyed by the full feature row
// and model version. Only the model call is cached.
type CachedScorer struct {
	inner     Scorer
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewCachedScorer wraps inner with a TTL cache
func NewCachedScorer(inner Scorer, ttl time.Duration) *CachedScorer {
	return &CachedScorer{
		inner: inner,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// PredictProba returns a cached probability or scores and stores it
func (c *CachedScorer) PredictProba(ctx context.Context, fv features.FeatureVector) (float64, error) {
	info := c.inner.Info()
	key := info.ModelVersion + "|" + fv.Key()

	if v, found := c.cache.Get(key); found {
		if p, ok := v.(float64); ok {
			c.hitCount.Add(1)
			c.updateMetrics()
			ModelPredictionsTotal.WithLabelValues(info.Source, "true").Inc()
			return p, nil
		}
	}

	c.missCount.Add(1)
	c.updateMetrics()

	p, err := c.inner.PredictProba(ctx, fv)
	if err != nil {
		return 0, err
	}
	c.cache.Set(key, p, c.ttl)
	return p, nil
}

// Info describes the wrapped scorer
func (c *CachedScorer) Info() Info {
	return c.inner.Info()
}

// Unwrap returns the scorer behind the cache
func (c *CachedScorer) Unwrap() Scorer {
	return c.inner
}

// Stats returns cache statistics
func (c *CachedScorer) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *CachedScorer) ItemCount() int {
	return c.cache.ItemCount()
}

// Clear flushes the cache and resets statistics
func (c *CachedScorer) Clear() {
	c.cache.Flush()
	c.hitCount.Store(0)
	c.missCount.Store(0)
}

func (c *CachedScorer) updateMetrics() {
	_, _, ratio := c.Stats()
	ModelCacheHitRatio.Set(ratio)
}

// CachedLoader wraps the scorer produced by load with a cache when ttl is positive
func CachedLoader(load Loader, ttl time.Duration) Loader {
	if ttl <= 0 {
		return load
	}
	return func(ctx context.Context) (Scorer, error) {
		s, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return NewCachedScorer(s, ttl), nil
	}
}
