package cache

import (
	"context"
	"time"

	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// Backend stores conversion results
type Backend interface {
	// Name labels the backend in metrics and logs
	Name() string
	Get(ctx context.Context, key string) ([]g2p.Result, error)
	Set(ctx context.Context, key string, results []g2p.Result, ttl time.Duration) error
	// Invalidate removes every entry whose key starts with prefix
	Invalidate(ctx context.Context, prefix string) error
	Len(ctx context.Context) (int64, error)
	Close() error
}

// Stats holds cache statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	ItemCount int64   `json:"item_count"`
	HitRate   float64 `json:"hit_rate"`
}

// Config holds cache settings
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 4096,
		TTL:        30 * time.Minute,
	}
}

func cloneResults(results []g2p.Result) []g2p.Result {
	if results == nil {
		return nil
	}
	out := make([]g2p.Result, len(results))
	for i, r := range results {
		out[i] = r
		if r.Candidates != nil {
			out[i].Candidates = append(make([]string, 0, len(r.Candidates)), r.Candidates...)
		}
	}
	return out
}
