package store

import (
	"fmt"
	"time"

	ristretto "github.com/dgraph-io/ristretto/v2"
)

// RistrettoConfig sizes the material cache.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

// RistrettoCache implements CacheBackend with a ristretto cache. Every entry
// costs 1, so MaxCost is the maximum number of cached lines.
type RistrettoCache struct {
	cache *ristretto.Cache[string, string]
	ttl   time.Duration
}

// NewRistrettoCache creates a RistrettoCache. Close must be called to stop its goroutines.
func NewRistrettoCache(cfg RistrettoConfig) (*RistrettoCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create material cache: %w", err)
	}
	return &RistrettoCache{cache: cache, ttl: cfg.TTL}, nil
}

// Get returns the cached line.
func (r *RistrettoCache) Get(key string) (string, bool) {
	return r.cache.Get(key)
}

// Set stores the line with the configured TTL and waits for the write buffer to drain.
func (r *RistrettoCache) Set(key, value string) {
	r.cache.SetWithTTL(key, value, 1, r.ttl)
	r.cache.Wait()
}

// Del removes the line.
func (r *RistrettoCache) Del(key string) {
	r.cache.Del(key)
	r.cache.Wait()
}

// Close stops the cache goroutines.
func (r *RistrettoCache) Close() {
	r.cache.Close()
}
