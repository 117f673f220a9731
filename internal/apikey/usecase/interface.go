// Package usecase implements API key issuance and validation. Plain keys are only
// ever returned inside a token signed with the rotating JWT key of the
// (app code, namespace) pair; the database keeps their argon2id hashes.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
)

// APIKeyRepository defines the interface for API key persistence.
type APIKeyRepository interface {
	Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error
	GetByID(ctx context.Context, appCode string, apiKeyID uuid.UUID) (*apikeyDomain.APIKey, error)
	ListActive(
		ctx context.Context,
		appCode, namespace string,
		keyType apikeyDomain.Type,
		publicKey *string,
	) ([]*apikeyDomain.APIKey, error)
	List(ctx context.Context, appCode, namespace string) ([]*apikeyDomain.APIKey, error)
	UpdateKeyHash(ctx context.Context, apiKeyID uuid.UUID, keyHash string) error
	UpdateActive(ctx context.Context, apiKeyID uuid.UUID, active bool, revokedAt *time.Time) error
	UpdateDescription(ctx context.Context, apiKeyID uuid.UUID, description *string) error
	Delete(ctx context.Context, apiKeyID uuid.UUID) error
}

// ConfigReader reads the in-use config of an app namespace.
type ConfigReader interface {
	Get(ctx context.Context, appCode, namespace string) (*configDomain.Config, error)
}

// KeyVerifier checks a candidate secret against a stored key record.
type KeyVerifier interface {
	Verify(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error)
}

// GenerateInput holds the fields of a new API key. Length is the number of
// random key bytes; zero selects the default.
type GenerateInput struct {
	AppCode     string
	Namespace   string
	Type        apikeyDomain.Type
	Length      int
	Description *string
}

// ValidateInput holds a presented token. PublicKey is required for THIRD_PARTY keys.
type ValidateInput struct {
	AppCode   string
	Namespace string
	Type      apikeyDomain.Type
	Token     string
	PublicKey *string
}

// APIKeyUseCase defines the API key operations.
type APIKeyUseCase interface {
	// Generate creates an active key and returns it with its token.
	Generate(ctx context.Context, input *GenerateInput) (*apikeyDomain.Issued, error)

	// Validate verifies the token signature and checks the embedded key
	// against the active keys of the app and type.
	Validate(ctx context.Context, input *ValidateInput) (bool, error)

	// Reset replaces the key of an API key, reactivates it and returns the new token.
	Reset(ctx context.Context, appCode string, apiKeyID uuid.UUID, length int) (*apikeyDomain.Issued, error)

	// Toggle flips the active flag and returns the new state.
	Toggle(ctx context.Context, appCode string, apiKeyID uuid.UUID) (bool, error)

	UpdateDescription(ctx context.Context, appCode string, apiKeyID uuid.UUID, description *string) error

	Delete(ctx context.Context, appCode string, apiKeyID uuid.UUID) error

	List(ctx context.Context, appCode, namespace string) ([]*apikeyDomain.APIKey, error)

	// VerifyKey checks a candidate against a key record of the lifecycle manager.
	VerifyKey(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error)
}
