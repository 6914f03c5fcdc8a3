package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Factory wraps a G2P factory and caches its conversion results.
// It keeps the wrapped id, so it can be registered in place of the original.
type Factory struct {
	inner   g2p.Factory
	backend Backend
	ttl     time.Duration
	log     *logrus.Logger
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64

	// generation is bumped by Unload; a conversion started in an older
	// generation does not store its result
	genMu      sync.RWMutex
	generation uint64
}

// Option configures a caching Factory
type Option func(*Factory)

// WithTTL sets the entry lifetime passed to the backend
func WithTTL(ttl time.Duration) Option {
	return func(f *Factory) { f.ttl = ttl }
}

// WithLogger sets the logger used for backend failures
func WithLogger(log *logrus.Logger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// WithMetrics records cache hits and misses
func WithMetrics(metrics *observability.Metrics) Option {
	return func(f *Factory) { f.metrics = metrics }
}

// Wrap returns a caching decorator around inner
func Wrap(inner g2p.Factory, backend Backend, opts ...Option) *Factory {
	f := &Factory{
		inner:   inner,
		backend: backend,
		ttl:     DefaultConfig().TTL,
		log:     logrus.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) ID() string { return f.inner.ID() }

func (f *Factory) Info() g2p.Info { return g2p.InfoOf(f.inner) }

// Unwrap returns the decorated factory
func (f *Factory) Unwrap() g2p.Factory { return f.inner }

// Convert serves from the backend when possible. Backend failures degrade to
// calling the wrapped factory.
func (f *Factory) Convert(ctx context.Context, input []string, config g2p.Config) ([]g2p.Result, error) {
	key, err := NewKey(f.inner.ID(), config, input)
	if err != nil {
		f.log.Debugf("Not caching conversion for %s: %v", f.inner.ID(), err)
		return f.inner.Convert(ctx, input, config)
	}
	keyStr := key.String()

	cached, err := f.backend.Get(ctx, keyStr)
	switch {
	case err == nil:
		f.hits.Add(1)
		f.metrics.RecordCacheHit(f.backend.Name())
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		f.log.Warnf("Cache %s get failed for %s: %v", f.backend.Name(), f.inner.ID(), err)
	}

	f.misses.Add(1)
	f.metrics.RecordCacheMiss(f.backend.Name())

	f.genMu.RLock()
	gen := f.generation
	f.genMu.RUnlock()

	results, err := f.inner.Convert(ctx, input, config)
	if err != nil {
		return nil, err
	}

	f.store(ctx, gen, keyStr, results)
	return results, nil
}

// store writes results unless Unload ran since the conversion started. The
// read lock is held across Set so Unload's invalidation always follows it.
func (f *Factory) store(ctx context.Context, gen uint64, key string, results []g2p.Result) {
	f.genMu.RLock()
	defer f.genMu.RUnlock()

	if f.generation != gen {
		f.log.Debugf("Dropping stale cache entry for %s", f.inner.ID())
		return
	}
	if err := f.backend.Set(ctx, key, results, f.ttl); err != nil {
		f.log.Warnf("Cache %s set failed for %s: %v", f.backend.Name(), f.inner.ID(), err)
	}
}

// Invalidate drops every cached result of this engine
func (f *Factory) Invalidate(ctx context.Context) error {
	return f.backend.Invalidate(ctx, enginePrefix(f.inner.ID()))
}

// Unload invalidates this engine's entries and unloads the wrapped factory
func (f *Factory) Unload() error {
	f.genMu.Lock()
	f.generation++
	f.genMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.Invalidate(ctx); err != nil {
		f.log.Warnf("Failed to invalidate cache for %s: %v", f.inner.ID(), err)
	}

	if u, ok := f.inner.(g2p.Unloader); ok {
		return u.Unload()
	}
	return nil
}

// Stats returns cache statistics for this engine
func (f *Factory) Stats(ctx context.Context) (*Stats, error) {
	items, err := f.backend.Len(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Hits:      f.hits.Load(),
		Misses:    f.misses.Load(),
		ItemCount: items,
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	return stats, nil
}
