package store

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/allisson/appconfig/internal/errors"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// MaterialStore keeps the raw secret of every (type, version) in a durable
// backend and a cache. The durable copy is always written first; the cache is
// repopulated from it on a miss.
type MaterialStore struct {
	durable DurableBackend
	cache   CacheBackend
	logger  *slog.Logger
	group   singleflight.Group
}

// NewMaterialStore creates a MaterialStore.
func NewMaterialStore(durable DurableBackend, cache CacheBackend, logger *slog.Logger) *MaterialStore {
	return &MaterialStore{
		durable: durable,
		cache:   cache,
		logger:  logger,
	}
}

// Put writes the material to the durable backend, then to the cache. A durable
// failure leaves the cache untouched.
func (s *MaterialStore) Put(ctx context.Context, keyType string, version uint, m keyDomain.Material) error {
	line := m.String()

	if err := s.durable.Write(ctx, keyDomain.MaterialPath(keyType, version), []byte(line)); err != nil {
		return err
	}

	s.cache.Set(keyDomain.CacheKey(keyType, version), line)
	return nil
}

// Resolve returns the material of a version from the cache or, on a miss, from
// the durable backend. Concurrent resolves of the same version share one lookup.
func (s *MaterialStore) Resolve(ctx context.Context, keyType string, version uint) (*keyDomain.Material, error) {
	cacheKey := keyDomain.CacheKey(keyType, version)

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		if line, ok := s.cache.Get(cacheKey); ok {
			m, err := keyDomain.ParseMaterial(line)
			if err == nil {
				return m, nil
			}
			s.logger.Warn("dropping corrupt cached material",
				slog.String("type", keyType),
				slog.Uint64("version", uint64(version)),
			)
			s.cache.Del(cacheKey)
		}

		content, err := s.durable.Read(ctx, keyDomain.MaterialPath(keyType, version))
		if err != nil {
			if errors.Is(err, ErrMaterialNotFound) {
				return nil, keyDomain.ErrMaterialMissing
			}
			return nil, err
		}

		m, err := keyDomain.ParseMaterial(string(content))
		if err != nil {
			return nil, err
		}

		s.cache.Set(cacheKey, m.String())
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the pointer.
	m := *v.(*keyDomain.Material)
	return &m, nil
}

// Evict drops the cached copy of a version only.
func (s *MaterialStore) Evict(keyType string, version uint) {
	s.cache.Del(keyDomain.CacheKey(keyType, version))
}

// Delete removes both copies of a version.
func (s *MaterialStore) Delete(ctx context.Context, keyType string, version uint) error {
	s.cache.Del(keyDomain.CacheKey(keyType, version))

	if err := s.durable.Delete(ctx, keyDomain.MaterialPath(keyType, version)); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}
