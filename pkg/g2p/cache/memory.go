package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// MemoryBackend is an in-process LRU with a per-cache TTL
type MemoryBackend struct {
	cache *lru.LRU[string, []g2p.Result]
}

// NewMemoryBackend creates a memory backend. A nil config uses DefaultConfig.
func NewMemoryBackend(config *Config) *MemoryBackend {
	if config == nil {
		config = DefaultConfig()
	}

	maxEntries := config.MaxEntries
	if maxEntries < 10 {
		maxEntries = 10 // Minimum 10 entries
	}

	return &MemoryBackend{
		cache: lru.NewLRU[string, []g2p.Result](maxEntries, nil, config.TTL),
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

// Get returns a copy of the cached results
func (m *MemoryBackend) Get(ctx context.Context, key string) ([]g2p.Result, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	results, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return cloneResults(results), nil
}

// Set stores a copy of results. The ttl argument is ignored; entries expire
// after the TTL the backend was created with.
func (m *MemoryBackend) Set(ctx context.Context, key string, results []g2p.Result, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	m.cache.Add(key, cloneResults(results))
	return nil
}

// Invalidate removes all entries under prefix
func (m *MemoryBackend) Invalidate(ctx context.Context, prefix string) error {
	for _, key := range m.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Remove(key)
		}
	}
	return nil
}

func (m *MemoryBackend) Len(ctx context.Context) (int64, error) {
	return int64(m.cache.Len()), nil
}

// Close releases resources
func (m *MemoryBackend) Close() error {
	m.cache.Purge()
	return nil
}
