package app

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/blob"

	cryptoService "github.com/allisson/appconfig/internal/crypto/service"
	"github.com/allisson/appconfig/internal/envelope"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	keyHTTP "github.com/allisson/appconfig/internal/key/http"
	keyRepository "github.com/allisson/appconfig/internal/key/repository"
	"github.com/allisson/appconfig/internal/key/store"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// Bucket returns the blob bucket holding the secret material files.
func (c *Container) Bucket() (*blob.Bucket, error) {
	var err error
	c.bucketInit.Do(func() {
		c.bucket, err = c.initBucket()
		if err != nil {
			c.initErrors["bucket"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bucket"]; exists {
		return nil, storedErr
	}
	return c.bucket, nil
}

// MaterialCache returns the in-memory cache of secret material.
func (c *Container) MaterialCache() (*store.RistrettoCache, error) {
	var err error
	c.materialCacheInit.Do(func() {
		c.materialCache, err = c.initMaterialCache()
		if err != nil {
			c.initErrors["materialCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["materialCache"]; exists {
		return nil, storedErr
	}
	return c.materialCache, nil
}

// MaterialStore returns the hybrid durable/cache secret material store.
func (c *Container) MaterialStore() (*store.MaterialStore, error) {
	var err error
	c.materialStoreInit.Do(func() {
		c.materialStore, err = c.initMaterialStore()
		if err != nil {
			c.initErrors["materialStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["materialStore"]; exists {
		return nil, storedErr
	}
	return c.materialStore, nil
}

// Hasher returns the scrypt verification hasher.
func (c *Container) Hasher() cryptoService.Hasher {
	c.hasherInit.Do(func() {
		c.hasher = cryptoService.NewScryptHasher()
	})
	return c.hasher
}

// Cipher returns the AES-256-CTR + HMAC-SHA256 cipher.
func (c *Container) Cipher() cryptoService.Cipher {
	c.cipherInit.Do(func() {
		c.cipher = cryptoService.NewCTRHMACCipher()
	})
	return c.cipher
}

// SecretGenerator returns the generator of raw key secrets.
func (c *Container) SecretGenerator() cryptoService.SecretGenerator {
	c.secretGeneratorInit.Do(func() {
		c.secretGenerator = cryptoService.NewRandomSecretGenerator()
	})
	return c.secretGenerator
}

// KeyPolicy returns the policy consumers bootstrap and rotate their keys with.
func (c *Container) KeyPolicy() (keyDomain.KeyPolicy, error) {
	var err error
	c.keyPolicyInit.Do(func() {
		c.keyPolicy, err = c.initKeyPolicy()
		if err != nil {
			c.initErrors["keyPolicy"] = err
		}
	})
	if err != nil {
		return keyDomain.KeyPolicy{}, err
	}
	if storedErr, exists := c.initErrors["keyPolicy"]; exists {
		return keyDomain.KeyPolicy{}, storedErr
	}
	return c.keyPolicy, nil
}

// KeyRepository returns the key record repository based on database driver.
func (c *Container) KeyRepository() (keyUseCase.KeyRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyUseCase returns the key lifecycle use case.
func (c *Container) KeyUseCase() (keyUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// Codec returns the envelope codec shared by the consumers.
func (c *Container) Codec() (*envelope.Codec, error) {
	var err error
	c.codecInit.Do(func() {
		c.codec, err = c.initCodec()
		if err != nil {
			c.initErrors["codec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["codec"]; exists {
		return nil, storedErr
	}
	return c.codec, nil
}

// Sweeper returns the expired key sweeper.
func (c *Container) Sweeper() (*keyUseCase.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		c.sweeper, err = c.initSweeper()
		if err != nil {
			c.initErrors["sweeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// KeyHandler returns the HTTP handler for key administration.
func (c *Container) KeyHandler() (*keyHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

func (c *Container) initBucket() (*blob.Bucket, error) {
	bucket, err := store.OpenBucket(context.Background(), c.config.KeyStoreURL)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

func (c *Container) initMaterialCache() (*store.RistrettoCache, error) {
	return store.NewRistrettoCache(store.RistrettoConfig{
		NumCounters: c.config.KeyCacheNumCounters,
		MaxCost:     c.config.KeyCacheMaxCost,
		TTL:         c.config.KeyCacheTTL,
	})
}

func (c *Container) initMaterialStore() (*store.MaterialStore, error) {
	bucket, err := c.Bucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket for material store: %w", err)
	}

	cache, err := c.MaterialCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for material store: %w", err)
	}

	return store.NewMaterialStore(store.NewBlobBackend(bucket), cache, c.Logger()), nil
}

// initKeyPolicy builds the consumer key policy from the KEY_BYTES_* and KEY_ROTATE_DURATION settings.
func (c *Container) initKeyPolicy() (keyDomain.KeyPolicy, error) {
	duration, err := keyDomain.ParseDuration(c.config.KeyRotateDuration)
	if err != nil {
		return keyDomain.KeyPolicy{}, fmt.Errorf("invalid key rotate duration %q: %w", c.config.KeyRotateDuration, err)
	}

	policy := keyDomain.KeyPolicy{
		Bytes: keyDomain.BytesPolicy{
			Mode:  keyDomain.BytesMode(strings.ToUpper(c.config.KeyBytesMode)),
			Fixed: c.config.KeyBytesFixed,
			From:  c.config.KeyBytesRandFrom,
			To:    c.config.KeyBytesRandTo,
		},
		Duration: duration,
	}
	if err := policy.Validate(); err != nil {
		return keyDomain.KeyPolicy{}, fmt.Errorf("invalid key policy: %w", err)
	}
	return policy, nil
}

func (c *Container) initKeyRepository() (keyUseCase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return keyRepository.NewMySQLKeyRepository(db), nil
	case "postgres":
		return keyRepository.NewPostgreSQLKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyUseCase creates the key use case, wrapped with metrics when enabled.
func (c *Container) initKeyUseCase() (keyUseCase.KeyUseCase, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	materialStore, err := c.MaterialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get material store for key use case: %w", err)
	}

	baseUseCase := keyUseCase.NewKeyUseCase(
		repo,
		materialStore,
		c.Hasher(),
		c.SecretGenerator(),
		c.Logger(),
		keyUseCase.WithMaxRetries(c.config.KeyGenerateMaxRetries),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return keyUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initCodec() (*envelope.Codec, error) {
	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for codec: %w", err)
	}
	return envelope.NewCodec(keys, c.Cipher(), c.Logger()), nil
}

func (c *Container) initSweeper() (*keyUseCase.Sweeper, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for sweeper: %w", err)
	}

	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for sweeper: %w", err)
	}

	return keyUseCase.NewSweeper(
		keyUseCase.SweeperConfig{
			Interval:  c.config.KeySweeperInterval,
			Grace:     c.config.KeySweeperGrace,
			BatchSize: c.config.KeySweeperBatchSize,
		},
		txManager,
		keys,
		c.Logger(),
	), nil
}

func (c *Container) initKeyHandler() (*keyHTTP.KeyHandler, error) {
	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key handler: %w", err)
	}
	return keyHTTP.NewKeyHandler(keys, c.Logger()), nil
}
