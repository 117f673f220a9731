package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gocloud.dev/blob/memblob"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// failingBackend fails every write and counts reads.
type failingBackend struct {
	DurableBackend
	reads atomic.Int32
}

func (f *failingBackend) Write(ctx context.Context, path string, content []byte) error {
	return errors.New("disk full")
}

func (f *failingBackend) Read(ctx context.Context, path string) ([]byte, error) {
	f.reads.Add(1)
	return f.DurableBackend.Read(ctx, path)
}

func newTestStore(t *testing.T) (*MaterialStore, *BlobBackend, *RistrettoCache) {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	cache, err := NewRistrettoCache(RistrettoConfig{NumCounters: 1000, MaxCost: 100, TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	backend := NewBlobBackend(bucket)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMaterialStore(backend, cache, logger), backend, cache
}

func TestMaterialStore_PutResolve(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	expireAt := now.Add(time.Hour)

	t.Run("Success_WritesBothCopies", func(t *testing.T) {
		s, backend, cache := newTestStore(t)
		m := keyDomain.NewMaterial("secret-1", now, &expireAt)

		require.NoError(t, s.Put(ctx, "billing", 1, m))

		content, err := backend.Read(ctx, "keys/billing/v_1.txt")
		require.NoError(t, err)
		assert.Equal(t, m.String(), string(content))

		line, ok := cache.Get("KEY_billing_1")
		require.True(t, ok)
		assert.Equal(t, m.String(), line)

		resolved, err := s.Resolve(ctx, "billing", 1)
		require.NoError(t, err)
		assert.Equal(t, "secret-1", resolved.Secret)
		assert.True(t, resolved.ValidTo.Equal(expireAt))
	})

	t.Run("Success_RepopulatesCacheFromDurable", func(t *testing.T) {
		s, _, cache := newTestStore(t)
		require.NoError(t, s.Put(ctx, "billing", 2, keyDomain.NewMaterial("secret-2", now, nil)))

		s.Evict("billing", 2)
		_, ok := cache.Get("KEY_billing_2")
		require.False(t, ok)

		resolved, err := s.Resolve(ctx, "billing", 2)
		require.NoError(t, err)
		assert.Equal(t, "secret-2", resolved.Secret)
		assert.Nil(t, resolved.ValidTo)

		_, ok = cache.Get("KEY_billing_2")
		assert.True(t, ok)
	})

	t.Run("Success_ServedFromCacheWhenDurableGone", func(t *testing.T) {
		s, backend, _ := newTestStore(t)
		require.NoError(t, s.Put(ctx, "billing", 3, keyDomain.NewMaterial("secret-3", now, nil)))
		require.NoError(t, backend.Delete(ctx, "keys/billing/v_3.txt"))

		resolved, err := s.Resolve(ctx, "billing", 3)
		require.NoError(t, err)
		assert.Equal(t, "secret-3", resolved.Secret)
	})

	t.Run("Error_MissingEverywhere", func(t *testing.T) {
		s, _, _ := newTestStore(t)

		_, err := s.Resolve(ctx, "billing", 9)
		assert.ErrorIs(t, err, keyDomain.ErrMaterialMissing)
	})

	t.Run("Error_CorruptDurable", func(t *testing.T) {
		s, backend, _ := newTestStore(t)
		require.NoError(t, backend.Write(ctx, "keys/billing/v_4.txt", []byte("garbage")))

		_, err := s.Resolve(ctx, "billing", 4)
		assert.ErrorIs(t, err, keyDomain.ErrMaterialMissing)
	})

	t.Run("Success_CorruptCacheFallsBackToDurable", func(t *testing.T) {
		s, _, cache := newTestStore(t)
		require.NoError(t, s.Put(ctx, "billing", 5, keyDomain.NewMaterial("secret-5", now, nil)))
		cache.Set("KEY_billing_5", "broken")

		resolved, err := s.Resolve(ctx, "billing", 5)
		require.NoError(t, err)
		assert.Equal(t, "secret-5", resolved.Secret)
	})

	t.Run("Error_DurableWriteLeavesCacheUntouched", func(t *testing.T) {
		_, backend, cache := newTestStore(t)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		s := NewMaterialStore(&failingBackend{DurableBackend: backend}, cache, logger)

		err := s.Put(ctx, "billing", 6, keyDomain.NewMaterial("secret-6", now, nil))
		assert.Error(t, err)

		_, ok := cache.Get("KEY_billing_6")
		assert.False(t, ok)
	})
}

func TestMaterialStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, backend, cache := newTestStore(t)
	require.NoError(t, s.Put(ctx, "billing", 1, keyDomain.NewMaterial("secret", time.Now(), nil)))

	require.NoError(t, s.Delete(ctx, "billing", 1))
	require.NoError(t, s.Delete(ctx, "billing", 1))

	_, ok := cache.Get("KEY_billing_1")
	assert.False(t, ok)
	_, err := backend.Read(ctx, "keys/billing/v_1.txt")
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestMaterialStore_ConcurrentResolve(t *testing.T) {
	ctx := context.Background()
	_, backend, cache := newTestStore(t)
	counting := &failingBackend{DurableBackend: backend}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewMaterialStore(counting, cache, logger)

	line := keyDomain.NewMaterial("shared", time.Now(), nil).String()
	require.NoError(t, backend.Write(ctx, "keys/billing/v_1.txt", []byte(line)))

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			m, err := s.Resolve(ctx, "billing", 1)
			assert.NoError(t, err)
			assert.Equal(t, "shared", m.Secret)
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, counting.reads.Load(), int32(20))
	assert.GreaterOrEqual(t, counting.reads.Load(), int32(1))
}
