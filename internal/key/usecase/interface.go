package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// KeyRepository defines the interface for key record persistence.
type KeyRepository interface {
	Create(ctx context.Context, key *keyDomain.Key) error
	GetByID(ctx context.Context, keyID uuid.UUID) (*keyDomain.Key, error)
	GetActive(ctx context.Context, keyType string) (*keyDomain.Key, error)
	GetByTypeAndVersion(ctx context.Context, keyType string, version uint) (*keyDomain.Key, error)
	GetMaxVersion(ctx context.Context, keyType string) (uint, error)
	UpdateStatus(ctx context.Context, keyID uuid.UUID, status keyDomain.Status) error
	UpdateHashedSecret(ctx context.Context, keyID uuid.UUID, hashed string) error
	DemoteActive(ctx context.Context, keyType string, exceptVersion uint) (int64, error)
	Delete(ctx context.Context, keyID uuid.UUID) error
	ListByType(ctx context.Context, keyType string) ([]*keyDomain.Key, error)
	ListExpired(ctx context.Context, before time.Time, limit int) ([]*keyDomain.Key, error)
}

// MaterialStore defines the interface for raw secret material persistence.
type MaterialStore interface {
	Put(ctx context.Context, keyType string, version uint, m keyDomain.Material) error
	Resolve(ctx context.Context, keyType string, version uint) (*keyDomain.Material, error)
	Delete(ctx context.Context, keyType string, version uint) error
}

// KeyUseCase defines the key lifecycle operations.
type KeyUseCase interface {
	// Generate creates the next version of a type, stores its material and demotes
	// the previously active version.
	Generate(ctx context.Context, input keyDomain.GenerateInput) (*keyDomain.RotateKey, error)

	// GetRotateKey resolves the active (or a pinned) version of a type, bootstrapping
	// the first version and renewing expired ones on request.
	GetRotateKey(ctx context.Context, keyType string, opts keyDomain.RotateOptions) (*keyDomain.RotateKey, error)

	// Verify checks a candidate secret against the stored hash of a key.
	Verify(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error)

	// List returns the metadata of every version of a type.
	List(ctx context.Context, keyType string) ([]*keyDomain.Key, error)

	// RetireExpired retires up to limit keys that expired at or before the given time.
	RetireExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
