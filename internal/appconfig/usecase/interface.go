// Package usecase implements versioned application configuration on top of the
// envelope codec: every stored version is sealed under the rotating config key
// of its (app code, namespace), and values opened with a grace-period key are
// resealed under the new key before they are returned.
package usecase

import (
	"context"

	"github.com/google/uuid"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
	"github.com/allisson/appconfig/internal/envelope"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// ConfigRepository defines the interface for config version persistence.
type ConfigRepository interface {
	Create(ctx context.Context, config *configDomain.Config) error
	GetByID(ctx context.Context, appCode string, configID uuid.UUID) (*configDomain.Config, error)
	GetInUse(ctx context.Context, appCode, namespace string) (*configDomain.Config, error)
	GetMaxVersion(ctx context.Context, appCode, namespace string) (uint, error)
	UnuseAll(ctx context.Context, appCode, namespace string) error
	UpdateIsUse(ctx context.Context, configID uuid.UUID, isUse bool) error
	UpdatePayload(ctx context.Context, configID uuid.UUID, payload string) error
	Delete(ctx context.Context, configID uuid.UUID) error
	ListRevisions(ctx context.Context, appCode, namespace string) ([]*configDomain.Revision, error)
}

// EnvelopeCodec seals and opens values under a rotating key.
type EnvelopeCodec interface {
	Seal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error)
	Reseal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error)
	Open(
		ctx context.Context,
		keyType string,
		opts keyDomain.RotateOptions,
		stored string,
		out any,
	) (*envelope.Opened, error)
}

// ConfigUseCase defines the config versioning operations.
type ConfigUseCase interface {
	// Up stores values as the next version and makes it the one in use.
	Up(ctx context.Context, appCode, namespace string, values configDomain.Values) (*configDomain.Config, error)

	// Get returns the in-use version with its values opened.
	Get(ctx context.Context, appCode, namespace string) (*configDomain.Config, error)

	// ToggleUse flips the in-use flag of a version and returns the new state.
	ToggleUse(ctx context.Context, appCode string, configID uuid.UUID) (bool, error)

	// Remove soft-deletes a version.
	Remove(ctx context.Context, appCode string, configID uuid.UUID) error

	// Rollback copies the values of a version into a new in-use version.
	Rollback(ctx context.Context, appCode string, configID uuid.UUID) (*configDomain.Config, error)

	// History lists the versions of a namespace, in-use first then newest first.
	History(ctx context.Context, appCode, namespace string) ([]*configDomain.Revision, error)
}
