package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
	"github.com/allisson/appconfig/internal/database"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// configUseCase implements the ConfigUseCase interface.
type configUseCase struct {
	txManager  database.TxManager
	configRepo ConfigRepository
	codec      EnvelopeCodec
	policy     keyDomain.KeyPolicy
	logger     *slog.Logger
}

// NewConfigUseCase creates a new ConfigUseCase. The policy sizes and rotates the
// config keys bootstrapped on first use.
func NewConfigUseCase(
	txManager database.TxManager,
	configRepo ConfigRepository,
	codec EnvelopeCodec,
	policy keyDomain.KeyPolicy,
	logger *slog.Logger,
) ConfigUseCase {
	return &configUseCase{
		txManager:  txManager,
		configRepo: configRepo,
		codec:      codec,
		policy:     policy,
		logger:     logger,
	}
}

// Up seals the values and inserts them as version max+1, unusing the previous version.
func (c *configUseCase) Up(
	ctx context.Context,
	appCode, namespace string,
	values configDomain.Values,
) (*configDomain.Config, error) {
	if len(values) == 0 {
		return nil, configDomain.ErrEmptyValues
	}

	keyType, err := keyDomain.TypeFor(keyDomain.PurposeConfig, appCode, namespace)
	if err != nil {
		return nil, err
	}

	payload, err := c.codec.Seal(ctx, keyType, c.policy.RotateOptions(), values)
	if err != nil {
		return nil, err
	}

	config, err := c.insertVersion(ctx, appCode, namespace, payload)
	if err != nil {
		return nil, err
	}
	config.Values = values

	c.logger.Info("config version created",
		slog.String("app_code", appCode),
		slog.String("namespace", namespace),
		slog.Uint64("version", uint64(config.Version)),
	)
	return config, nil
}

// insertVersion creates the next in-use version with an already sealed payload.
func (c *configUseCase) insertVersion(
	ctx context.Context,
	appCode, namespace, payload string,
) (*configDomain.Config, error) {
	var config *configDomain.Config
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		current, err := c.configRepo.GetMaxVersion(txCtx, appCode, namespace)
		if err != nil {
			return err
		}

		if err := c.configRepo.UnuseAll(txCtx, appCode, namespace); err != nil {
			return err
		}

		now := time.Now().UTC()
		config = &configDomain.Config{
			ID:        uuid.Must(uuid.NewV7()),
			AppCode:   appCode,
			Namespace: namespace,
			Version:   current + 1,
			IsUse:     true,
			Payload:   payload,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return c.configRepo.Create(txCtx, config)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Get opens the in-use version. When the payload was opened with a grace-period
// key it is resealed under the new key and persisted before returning.
func (c *configUseCase) Get(ctx context.Context, appCode, namespace string) (*configDomain.Config, error) {
	config, err := c.configRepo.GetInUse(ctx, appCode, namespace)
	if err != nil {
		return nil, err
	}

	if err := c.open(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// open fills config.Values, resealing the payload when needed.
func (c *configUseCase) open(ctx context.Context, config *configDomain.Config) error {
	keyType, err := keyDomain.TypeFor(keyDomain.PurposeConfig, config.AppCode, config.Namespace)
	if err != nil {
		return err
	}

	opts := c.policy.RotateOptions()

	var values configDomain.Values
	opened, err := c.codec.Open(ctx, keyType, opts, config.Payload, &values)
	if err != nil {
		return err
	}
	config.Values = values

	if !opened.NeedsReseal {
		return nil
	}

	payload, err := c.codec.Reseal(ctx, keyType, opts, values)
	if err != nil {
		return err
	}
	if err := c.configRepo.UpdatePayload(ctx, config.ID, payload); err != nil {
		return err
	}
	config.Payload = payload

	c.logger.Info("config payload resealed",
		slog.String("app_code", config.AppCode),
		slog.String("namespace", config.Namespace),
		slog.Uint64("version", uint64(config.Version)),
		slog.Uint64("expired_key_version", uint64(opened.Version)),
	)
	return nil
}

// ToggleUse flips the in-use flag. Turning a version on unuses the others first.
func (c *configUseCase) ToggleUse(ctx context.Context, appCode string, configID uuid.UUID) (bool, error) {
	config, err := c.configRepo.GetByID(ctx, appCode, configID)
	if err != nil {
		return false, err
	}

	isUse := !config.IsUse
	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if isUse {
			if err := c.configRepo.UnuseAll(txCtx, appCode, config.Namespace); err != nil {
				return err
			}
		}
		return c.configRepo.UpdateIsUse(txCtx, config.ID, isUse)
	})
	if err != nil {
		return false, err
	}
	return isUse, nil
}

// Remove soft-deletes a version.
func (c *configUseCase) Remove(ctx context.Context, appCode string, configID uuid.UUID) error {
	config, err := c.configRepo.GetByID(ctx, appCode, configID)
	if err != nil {
		return err
	}
	return c.configRepo.Delete(ctx, config.ID)
}

// Rollback opens a version and stores its values as a new in-use version sealed
// under the current key.
func (c *configUseCase) Rollback(
	ctx context.Context,
	appCode string,
	configID uuid.UUID,
) (*configDomain.Config, error) {
	source, err := c.configRepo.GetByID(ctx, appCode, configID)
	if err != nil {
		return nil, err
	}

	if err := c.open(ctx, source); err != nil {
		return nil, err
	}

	keyType, err := keyDomain.TypeFor(keyDomain.PurposeConfig, appCode, source.Namespace)
	if err != nil {
		return nil, err
	}

	payload, err := c.codec.Seal(ctx, keyType, c.policy.RotateOptions(), source.Values)
	if err != nil {
		return nil, err
	}

	config, err := c.insertVersion(ctx, appCode, source.Namespace, payload)
	if err != nil {
		return nil, err
	}
	config.Values = source.Values

	c.logger.Info("config rolled back",
		slog.String("app_code", appCode),
		slog.String("namespace", source.Namespace),
		slog.Uint64("from_version", uint64(source.Version)),
		slog.Uint64("version", uint64(config.Version)),
	)
	return config, nil
}

// History lists the versions of a namespace.
func (c *configUseCase) History(
	ctx context.Context,
	appCode, namespace string,
) ([]*configDomain.Revision, error) {
	return c.configRepo.ListRevisions(ctx, appCode, namespace)
}
