package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gocloud.dev/blob/memblob"

	cryptoService "github.com/allisson/appconfig/internal/crypto/service"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/key/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryKeyRepository is an in-memory KeyRepository enforcing UNIQUE(type, version).
type memoryKeyRepository struct {
	mu        sync.Mutex
	keys      map[uuid.UUID]keyDomain.Key
	conflicts int
}

func newMemoryKeyRepository() *memoryKeyRepository {
	return &memoryKeyRepository{keys: make(map[uuid.UUID]keyDomain.Key)}
}

func (r *memoryKeyRepository) Create(ctx context.Context, key *keyDomain.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts > 0 {
		r.conflicts--
		return keyDomain.ErrVersionConflict
	}
	for _, existing := range r.keys {
		if existing.Type == key.Type && existing.Version == key.Version {
			return keyDomain.ErrVersionConflict
		}
	}
	r.keys[key.ID] = *key
	return nil
}

func (r *memoryKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*keyDomain.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[keyID]
	if !ok || key.DeletedAt != nil {
		return nil, keyDomain.ErrKeyNotExist
	}
	return &key, nil
}

func (r *memoryKeyRepository) GetActive(ctx context.Context, keyType string) (*keyDomain.Key, error) {
	return r.find(func(k keyDomain.Key) bool {
		return k.Type == keyType && k.Status == keyDomain.StatusActive
	})
}

func (r *memoryKeyRepository) GetByTypeAndVersion(
	ctx context.Context,
	keyType string,
	version uint,
) (*keyDomain.Key, error) {
	return r.find(func(k keyDomain.Key) bool {
		return k.Type == keyType && k.Version == version && k.Status != keyDomain.StatusRetired
	})
}

func (r *memoryKeyRepository) find(match func(keyDomain.Key) bool) (*keyDomain.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *keyDomain.Key
	for _, key := range r.keys {
		if key.DeletedAt != nil || !match(key) {
			continue
		}
		if found == nil || key.Version > found.Version {
			k := key
			found = &k
		}
	}
	if found == nil {
		return nil, keyDomain.ErrKeyNotExist
	}
	return found, nil
}

func (r *memoryKeyRepository) GetMaxVersion(ctx context.Context, keyType string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var maxVersion uint
	for _, key := range r.keys {
		if key.Type == keyType && key.Version > maxVersion {
			maxVersion = key.Version
		}
	}
	return maxVersion, nil
}

func (r *memoryKeyRepository) UpdateStatus(ctx context.Context, keyID uuid.UUID, status keyDomain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.keys[keyID]
	key.Status = status
	r.keys[keyID] = key
	return nil
}

func (r *memoryKeyRepository) UpdateHashedSecret(ctx context.Context, keyID uuid.UUID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.keys[keyID]
	key.HashedSecret = hashed
	r.keys[keyID] = key
	return nil
}

func (r *memoryKeyRepository) DemoteActive(ctx context.Context, keyType string, exceptVersion uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var demoted int64
	for id, key := range r.keys {
		if key.Type == keyType && key.Status == keyDomain.StatusActive && key.Version != exceptVersion {
			key.Status = keyDomain.StatusInactive
			r.keys[id] = key
			demoted++
		}
	}
	return demoted, nil
}

func (r *memoryKeyRepository) Delete(ctx context.Context, keyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.keys, keyID)
	return nil
}

func (r *memoryKeyRepository) ListByType(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]*keyDomain.Key, 0)
	for _, key := range r.keys {
		if key.Type == keyType && key.DeletedAt == nil {
			k := key
			keys = append(keys, &k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Version > keys[j].Version })
	return keys, nil
}

func (r *memoryKeyRepository) ListExpired(ctx context.Context, before time.Time, limit int) ([]*keyDomain.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]*keyDomain.Key, 0)
	for _, key := range r.keys {
		if key.Status == keyDomain.StatusRetired || key.ExpireAt == nil || key.ExpireAt.After(before) {
			continue
		}
		k := key
		keys = append(keys, &k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ExpireAt.Before(*keys[j].ExpireAt) })
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (r *memoryKeyRepository) byVersion(keyType string, version uint) keyDomain.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.keys {
		if key.Type == keyType && key.Version == version {
			return key
		}
	}
	return keyDomain.Key{}
}

type testEnv struct {
	uc      KeyUseCase
	repo    *memoryKeyRepository
	store   *store.MaterialStore
	backend *store.BlobBackend
	clock   *fakeClock
	hasher  *cryptoService.ScryptHasher
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	cache, err := store.NewRistrettoCache(store.RistrettoConfig{NumCounters: 1000, MaxCost: 100, TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := store.NewBlobBackend(bucket)
	materialStore := store.NewMaterialStore(backend, cache, logger)
	repo := newMemoryKeyRepository()
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	hasher := cryptoService.NewScryptHasher()

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	uc := NewKeyUseCase(repo, materialStore, hasher, cryptoService.NewRandomSecretGenerator(), logger, opts...)

	return &testEnv{
		uc:      uc,
		repo:    repo,
		store:   materialStore,
		backend: backend,
		clock:   clock,
		hasher:  hasher,
	}
}

func durationOf(amount int, unit keyDomain.DurationUnit) *keyDomain.Duration {
	return &keyDomain.Duration{Amount: amount, Unit: unit}
}

func versionOf(v uint) *uint {
	return &v
}
