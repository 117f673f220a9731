package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/appconfig/internal/config"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

func newTestConfig() *config.Config {
	return &config.Config{
		LogLevel:             "info",
		DBDriver:             "invalid_driver",
		DBConnectionString:   "",
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		MetricsEnabled:       false,
		MetricsNamespace:     "appconfig",
		MetricsPort:          8081,
		KeyStoreURL:          "mem://",
		KeyCacheTTL:          time.Hour,
		KeyCacheMaxCost:      100,
		KeyCacheNumCounters:  1000,
		KeyBytesMode:         "fixed",
		KeyBytesFixed:        32,
		KeyBytesRandFrom:     32,
		KeyBytesRandTo:       64,
		KeyRotateDuration:    "30d",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := newTestConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	t.Run("Success_Singleton", func(t *testing.T) {
		container := NewContainer(&config.Config{LogLevel: "debug"})

		logger := container.Logger()
		require.NotNil(t, logger)
		assert.Same(t, logger, container.Logger())
	})

	t.Run("Success_DefaultLevel", func(t *testing.T) {
		container := NewContainer(&config.Config{LogLevel: "invalid"})
		assert.NotNil(t, container.Logger())
	})

	t.Run("Success_Lazy", func(t *testing.T) {
		container := NewContainer(&config.Config{LogLevel: "info"})
		assert.Nil(t, container.logger)

		container.Logger()
		assert.NotNil(t, container.logger)
	})
}

func TestContainerInitializationErrors(t *testing.T) {
	container := NewContainer(newTestConfig())

	_, err := container.DB()
	require.Error(t, err)

	_, err = container.DB()
	assert.Error(t, err, "the stored error is returned on later calls")

	_, err = container.KeyRepository()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get database for key repository")

	_, err = container.ConfigUseCase()
	assert.Error(t, err)

	_, err = container.APIKeyUseCase()
	assert.Error(t, err)
}

func TestContainerKeyPolicy(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		container := NewContainer(newTestConfig())

		policy, err := container.KeyPolicy()
		require.NoError(t, err)
		assert.Equal(t, keyDomain.BytesModeFixed, policy.Bytes.Mode)
		assert.Equal(t, 32, policy.Bytes.Fixed)
		assert.Equal(t, keyDomain.Duration{Amount: 30, Unit: keyDomain.UnitDay}, policy.Duration)
	})

	t.Run("Error_InvalidDuration", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.KeyRotateDuration = "soon"
		container := NewContainer(cfg)

		_, err := container.KeyPolicy()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid key rotate duration")

		_, err = container.KeyPolicy()
		assert.Error(t, err)
	})

	t.Run("Error_InvalidBytes", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.KeyBytesFixed = 8
		container := NewContainer(cfg)

		_, err := container.KeyPolicy()
		require.Error(t, err)
		assert.ErrorIs(t, err, keyDomain.ErrInvalidParams)
	})
}

func TestContainerMaterialStore(t *testing.T) {
	t.Run("Success_MemoryBucket", func(t *testing.T) {
		container := NewContainer(newTestConfig())

		materialStore, err := container.MaterialStore()
		require.NoError(t, err)
		require.NotNil(t, materialStore)

		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		require.NoError(t, materialStore.Put(ctx, "billing", 1, keyDomain.NewMaterial("s3cret", now, nil)))

		material, err := materialStore.Resolve(ctx, "billing", 1)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", material.Secret)

		assert.NoError(t, container.Shutdown(ctx))
	})

	t.Run("Error_UnknownScheme", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.KeyStoreURL = "nowhere://keys"
		container := NewContainer(cfg)

		_, err := container.MaterialStore()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get bucket for material store")
	})
}

func TestContainerCrypto(t *testing.T) {
	container := NewContainer(newTestConfig())

	assert.Same(t, container.Hasher(), container.Hasher())
	assert.Same(t, container.Cipher(), container.Cipher())
	assert.Same(t, container.SecretGenerator(), container.SecretGenerator())
	assert.Same(t, container.APIKeySecretService(), container.APIKeySecretService())
}

func TestContainerMetricsDisabled(t *testing.T) {
	container := NewContainer(newTestConfig())

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)
}

func TestContainerMetricsEnabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.MetricsEnabled = true
	container := NewContainer(cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, metricsServer)

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.Background()))
}
