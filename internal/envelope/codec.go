package envelope

import (
	"context"
	"fmt"
	"log/slog"

	cryptoService "github.com/allisson/appconfig/internal/crypto/service"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// KeyResolver resolves the secret of a key type.
type KeyResolver interface {
	GetRotateKey(ctx context.Context, keyType string, opts keyDomain.RotateOptions) (*keyDomain.RotateKey, error)
}

// Opened describes a successful decryption.
type Opened struct {
	// Version is the key version the envelope was sealed with.
	Version uint
	// NeedsReseal is true when the value was decrypted with a grace-period key.
	// The caller must seal it again and persist the new envelope.
	NeedsReseal bool
}

// Codec seals and opens envelopes for a consumer.
type Codec struct {
	resolver KeyResolver
	cipher   cryptoService.Cipher
	logger   *slog.Logger
}

// NewCodec creates a new Codec.
func NewCodec(resolver KeyResolver, cipher cryptoService.Cipher, logger *slog.Logger) *Codec {
	return &Codec{
		resolver: resolver,
		cipher:   cipher,
		logger:   logger,
	}
}

// Seal encrypts value under the active key of keyType and returns the stored envelope.
// Any pinned version in opts is ignored.
func (c *Codec) Seal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error) {
	opts.Version = nil

	key, err := c.resolver.GetRotateKey(ctx, keyType, opts)
	if err != nil {
		return "", err
	}

	payload, err := c.cipher.Encrypt(value, key.Secret, key.HashBytes)
	if err != nil {
		return "", err
	}

	return Envelope{Version: key.Version, Payload: payload}.String(), nil
}

// Reseal seals value again under the active key after Open reported NeedsReseal.
func (c *Codec) Reseal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error) {
	sealed, err := c.Seal(ctx, keyType, opts, value)
	if err != nil {
		return "", err
	}

	c.logger.Info("envelope resealed", slog.String("type", keyType))
	return sealed, nil
}

// Open decrypts a stored envelope into out using the exact key version it names.
func (c *Codec) Open(
	ctx context.Context,
	keyType string,
	opts keyDomain.RotateOptions,
	stored string,
	out any,
) (*Opened, error) {
	env, err := Parse(stored)
	if err != nil {
		return nil, err
	}

	version := env.Version
	opts.Version = &version

	key, err := c.resolver.GetRotateKey(ctx, keyType, opts)
	if err != nil {
		return nil, err
	}

	needsReseal := key.ExpiredKey != nil
	switch {
	case needsReseal:
		if key.ExpiredKey.Version != env.Version {
			return nil, fmt.Errorf("%w: renewed version %d, envelope version %d",
				keyDomain.ErrKeyNotExist, key.ExpiredKey.Version, env.Version)
		}
	case key.Version != env.Version:
		// The sealing version never existed and the lookup bootstrapped a new one.
		return nil, fmt.Errorf("%w: resolved version %d, envelope version %d",
			keyDomain.ErrKeyNotExist, key.Version, env.Version)
	}

	if err := c.cipher.Decrypt(env.Payload, key.DecryptSecret(), out); err != nil {
		return nil, err
	}

	return &Opened{Version: env.Version, NeedsReseal: needsReseal}, nil
}
