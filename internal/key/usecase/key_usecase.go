// Package usecase implements the key lifecycle: versioned generation, rotation
// on expiry with a one-time grace secret, repair of missing material, hash
// verification and retirement of expired versions.
//
// Each logical key type owns an independent lineage of versions. A version is
// created ACTIVE, demoted to INACTIVE when a newer version supersedes it, and
// RETIRED when it expires without renewal or is swept. INACTIVE versions stay
// decryptable by version number.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/appconfig/internal/crypto/service"
	apperrors "github.com/allisson/appconfig/internal/errors"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// DefaultMaxRetries bounds how many times Generate retries after losing a version race.
const DefaultMaxRetries = 3

// errGraceConsumed reports that another caller already renewed the record.
var errGraceConsumed = apperrors.New("key grace already consumed")

// Option configures a keyUseCase.
type Option func(*keyUseCase)

// WithClock replaces the time source, mainly for boundary tests.
func WithClock(now func() time.Time) Option {
	return func(k *keyUseCase) {
		k.now = now
	}
}

// WithMaxRetries sets how many version conflicts Generate tolerates.
func WithMaxRetries(maxRetries int) Option {
	return func(k *keyUseCase) {
		if maxRetries >= 0 {
			k.maxRetries = maxRetries
		}
	}
}

type keyUseCase struct {
	keyRepo    KeyRepository
	store      MaterialStore
	hasher     cryptoService.Hasher
	secrets    cryptoService.SecretGenerator
	logger     *slog.Logger
	locks      *typeLock
	maxRetries int
	now        func() time.Time
}

// NewKeyUseCase creates a new KeyUseCase.
func NewKeyUseCase(
	keyRepo KeyRepository,
	store MaterialStore,
	hasher cryptoService.Hasher,
	secrets cryptoService.SecretGenerator,
	logger *slog.Logger,
	opts ...Option,
) KeyUseCase {
	k := &keyUseCase{
		keyRepo:    keyRepo,
		store:      store,
		hasher:     hasher,
		secrets:    secrets,
		logger:     logger,
		locks:      newTypeLock(),
		maxRetries: DefaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Generate creates version max+1 of the type.
//
// Versions are serialized per type in this process; across processes the
// UNIQUE(type, version) constraint rejects the loser, which retries with a
// fresh version. If the material cannot be stored the record is deleted and
// KEY_GENERATE_ERROR is returned.
func (k *keyUseCase) Generate(ctx context.Context, input keyDomain.GenerateInput) (*keyDomain.RotateKey, error) {
	keyType, err := keyDomain.NormalizeType(input.Type)
	if err != nil {
		return nil, err
	}

	if input.UseRotate {
		if input.Duration == nil {
			return nil, keyDomain.ErrMissingDuration
		}
		if err := input.Duration.Validate(); err != nil {
			return nil, err
		}
	}

	unlock := k.locks.Lock(keyType)
	defer unlock()

	return k.generateLocked(ctx, keyType, input)
}

// generateLocked creates the next version. The caller holds the type lock.
func (k *keyUseCase) generateLocked(
	ctx context.Context,
	keyType string,
	input keyDomain.GenerateInput,
) (*keyDomain.RotateKey, error) {
	hashBytes := keyDomain.ClampBytes(input.Bytes)
	now := k.now().UTC()
	var expireAt *time.Time
	if input.UseRotate {
		t := input.Duration.AddTo(now)
		expireAt = &t
	}

	var (
		key    *keyDomain.Key
		secret string
		err    error
	)
	for attempt := 0; ; attempt++ {
		key, secret, err = k.createRecord(ctx, keyType, hashBytes, input, now, expireAt)
		if err == nil {
			break
		}
		if apperrors.Is(err, keyDomain.ErrVersionConflict) && attempt < k.maxRetries {
			k.logger.Warn("key version conflict, retrying",
				slog.String("type", keyType),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return nil, err
	}

	material := keyDomain.NewMaterial(secret, now, expireAt)
	if err := k.store.Put(ctx, keyType, key.Version, material); err != nil {
		if delErr := k.keyRepo.Delete(ctx, key.ID); delErr != nil {
			k.logger.Error("failed to roll back key record",
				slog.String("type", keyType),
				slog.Uint64("version", uint64(key.Version)),
				slog.Any("error", delErr),
			)
		}
		return nil, fmt.Errorf("%w: %v", keyDomain.ErrKeyGenerate, err)
	}

	if _, err := k.keyRepo.DemoteActive(ctx, keyType, key.Version); err != nil {
		k.logger.Warn("failed to demote previous key versions",
			slog.String("type", keyType),
			slog.Uint64("version", uint64(key.Version)),
			slog.Any("error", err),
		)
	}

	k.logger.Info("key generated",
		slog.String("type", keyType),
		slog.Uint64("version", uint64(key.Version)),
		slog.Bool("rotate", input.UseRotate),
	)

	return &keyDomain.RotateKey{
		Secret:    secret,
		Version:   key.Version,
		KeyID:     key.ID,
		HashBytes: key.HashBytes,
	}, nil
}

// createRecord inserts the next version with a fresh secret.
func (k *keyUseCase) createRecord(
	ctx context.Context,
	keyType string,
	hashBytes int,
	input keyDomain.GenerateInput,
	now time.Time,
	expireAt *time.Time,
) (*keyDomain.Key, string, error) {
	current, err := k.keyRepo.GetMaxVersion(ctx, keyType)
	if err != nil {
		return nil, "", err
	}

	secret, hashed, err := k.newSecret(hashBytes)
	if err != nil {
		return nil, "", err
	}

	key := &keyDomain.Key{
		ID:           uuid.Must(uuid.NewV7()),
		Type:         keyType,
		Version:      current + 1,
		HashedSecret: hashed,
		HashBytes:    hashBytes,
		Status:       keyDomain.StatusActive,
		ExpireAt:     expireAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.UseRotate {
		amount := input.Duration.Amount
		unit := input.Duration.Unit
		key.DurationAmount = &amount
		key.DurationUnit = &unit
	}

	if err := k.keyRepo.Create(ctx, key); err != nil {
		return nil, "", err
	}
	return key, secret, nil
}

func (k *keyUseCase) newSecret(hashBytes int) (string, string, error) {
	secret, err := k.secrets.Generate()
	if err != nil {
		return "", "", err
	}

	hashed, err := k.hasher.Hash(secret, cryptoService.HashOptions{Length: hashBytes})
	if err != nil {
		return "", "", err
	}
	return secret, hashed, nil
}

// GetRotateKey resolves the secret of a type.
func (k *keyUseCase) GetRotateKey(
	ctx context.Context,
	keyType string,
	opts keyDomain.RotateOptions,
) (*keyDomain.RotateKey, error) {
	keyType, err := keyDomain.NormalizeType(keyType)
	if err != nil {
		return nil, err
	}

	var key *keyDomain.Key
	if opts.Version != nil {
		key, err = k.keyRepo.GetByTypeAndVersion(ctx, keyType, *opts.Version)
	} else {
		key, err = k.keyRepo.GetActive(ctx, keyType)
	}
	if err != nil {
		if !apperrors.Is(err, keyDomain.ErrKeyNotExist) {
			return nil, err
		}
		if opts.Version != nil {
			// A version that existed once is retired, not bootstrapped again.
			latest, err := k.keyRepo.GetMaxVersion(ctx, keyType)
			if err != nil {
				return nil, err
			}
			if *opts.Version <= latest {
				return nil, keyDomain.ErrKeyExpired
			}
		}
		return k.Generate(ctx, keyDomain.GenerateInput{
			Type:      keyType,
			Bytes:     opts.Bytes,
			UseRotate: true,
			Duration:  opts.OnGenerateDuration,
		})
	}

	rotated, err := k.resolveOrigin(ctx, key, opts.RenewOnExpire, opts.OnGenerateDuration)
	if !apperrors.Is(err, errGraceConsumed) {
		return rotated, err
	}
	if opts.Version != nil {
		return nil, keyDomain.ErrKeyExpired
	}

	// Another caller renewed the type first; serve its version instead.
	key, err = k.keyRepo.GetActive(ctx, keyType)
	if err != nil {
		return nil, err
	}
	rotated, err = k.resolveOrigin(ctx, key, opts.RenewOnExpire, opts.OnGenerateDuration)
	if apperrors.Is(err, errGraceConsumed) {
		return nil, keyDomain.ErrKeyExpired
	}
	return rotated, err
}

// resolveOrigin returns the raw secret of a record, repairing missing material
// once and renewing the key when it expired and renewal was requested.
func (k *keyUseCase) resolveOrigin(
	ctx context.Context,
	key *keyDomain.Key,
	renew bool,
	onGenerateDuration *keyDomain.Duration,
) (*keyDomain.RotateKey, error) {
	material, err := k.resolveMaterial(ctx, key)
	if err != nil {
		return nil, err
	}

	now := k.now()

	if material.NotStarted(now) {
		return nil, keyDomain.ErrKeyNotStarted
	}

	if material.Expired(now) || key.Status == keyDomain.StatusRetired || key.Expired(now) {
		if !renew {
			if key.Status != keyDomain.StatusRetired {
				if err := k.keyRepo.UpdateStatus(ctx, key.ID, keyDomain.StatusRetired); err != nil {
					return nil, err
				}
				k.logger.Info("key retired on expiry",
					slog.String("type", key.Type),
					slog.Uint64("version", uint64(key.Version)),
				)
			}
			return nil, keyDomain.ErrKeyExpired
		}

		return k.renew(ctx, key, material.Secret, onGenerateDuration)
	}

	return &keyDomain.RotateKey{
		Secret:    material.Secret,
		Version:   key.Version,
		KeyID:     key.ID,
		HashBytes: key.HashBytes,
	}, nil
}

// renew rotates an expired record and retires it, so its secret is handed back
// once per rotation event. Concurrent renewals of one record produce one version;
// the losers get errGraceConsumed.
func (k *keyUseCase) renew(
	ctx context.Context,
	key *keyDomain.Key,
	expiredSecret string,
	onGenerateDuration *keyDomain.Duration,
) (*keyDomain.RotateKey, error) {
	unlock := k.locks.Lock(key.Type)
	defer unlock()

	current, err := k.keyRepo.GetByID(ctx, key.ID)
	if err != nil {
		return nil, err
	}
	if current.Status == keyDomain.StatusRetired {
		return nil, errGraceConsumed
	}

	renewed, err := k.generateLocked(ctx, key.Type, keyDomain.GenerateInput{
		Type:      key.Type,
		Bytes:     key.HashBytes,
		UseRotate: onGenerateDuration != nil,
		Duration:  onGenerateDuration,
	})
	if err != nil {
		return nil, err
	}

	if err := k.keyRepo.UpdateStatus(ctx, key.ID, keyDomain.StatusRetired); err != nil {
		return nil, err
	}

	k.logger.Info("key renewed",
		slog.String("type", key.Type),
		slog.Uint64("expired_version", uint64(key.Version)),
		slog.Uint64("version", uint64(renewed.Version)),
	)

	renewed.ExpiredKey = &keyDomain.ExpiredKey{
		ID:      key.ID,
		Version: key.Version,
		Secret:  expiredSecret,
	}
	return renewed, nil
}

// resolveMaterial reads the material of a record, regenerating it in place under
// the same version when both copies are gone or corrupt.
func (k *keyUseCase) resolveMaterial(ctx context.Context, key *keyDomain.Key) (*keyDomain.Material, error) {
	material, err := k.store.Resolve(ctx, key.Type, key.Version)
	if err == nil {
		return material, nil
	}
	if !apperrors.Is(err, keyDomain.ErrMaterialMissing) {
		return nil, err
	}

	if err := k.regenerate(ctx, key); err != nil {
		return nil, err
	}

	material, err = k.store.Resolve(ctx, key.Type, key.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keyDomain.ErrKeyGenerate, err)
	}
	return material, nil
}

// regenerate writes a fresh secret for an existing version, keeping its expiry.
func (k *keyUseCase) regenerate(ctx context.Context, key *keyDomain.Key) error {
	unlock := k.locks.Lock(key.Type)
	defer unlock()

	// A concurrent caller may have repaired the version while this one waited.
	_, err := k.store.Resolve(ctx, key.Type, key.Version)
	switch {
	case err == nil:
		current, err := k.keyRepo.GetByID(ctx, key.ID)
		if err != nil {
			return err
		}
		key.HashedSecret = current.HashedSecret
		return nil
	case !apperrors.Is(err, keyDomain.ErrMaterialMissing):
		return err
	}

	secret, hashed, err := k.newSecret(key.HashBytes)
	if err != nil {
		return err
	}

	if err := k.keyRepo.UpdateHashedSecret(ctx, key.ID, hashed); err != nil {
		return err
	}
	key.HashedSecret = hashed

	material := keyDomain.NewMaterial(secret, k.now().UTC(), key.ExpireAt)
	if err := k.store.Put(ctx, key.Type, key.Version, material); err != nil {
		return fmt.Errorf("%w: %v", keyDomain.ErrKeyGenerate, err)
	}

	k.logger.Warn("key material regenerated",
		slog.String("type", key.Type),
		slog.Uint64("version", uint64(key.Version)),
	)
	return nil
}

// Verify resolves the key without renewal and compares the candidate with its hash.
func (k *keyUseCase) Verify(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error) {
	key, err := k.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return false, err
	}

	if _, err := k.resolveOrigin(ctx, key, false, nil); err != nil {
		return false, err
	}

	return k.hasher.Verify(candidate, key.HashedSecret), nil
}

// List returns the metadata of every version of a type.
func (k *keyUseCase) List(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	keyType, err := keyDomain.NormalizeType(keyType)
	if err != nil {
		return nil, err
	}
	return k.keyRepo.ListByType(ctx, keyType)
}

// RetireExpired retires keys that expired at or before the given time.
func (k *keyUseCase) RetireExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	keys, err := k.keyRepo.ListExpired(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	retired := 0
	for _, key := range keys {
		if err := k.keyRepo.UpdateStatus(ctx, key.ID, keyDomain.StatusRetired); err != nil {
			return retired, err
		}
		retired++

		k.logger.Info("key retired",
			slog.String("type", key.Type),
			slog.Uint64("version", uint64(key.Version)),
		)
	}
	return retired, nil
}
