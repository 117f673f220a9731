package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
)

// MySQLAPIKeyRepository implements APIKey persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository instance.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}

// Create inserts a new API key.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `INSERT INTO api_keys (` + apiKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		apiKey.AppCode,
		apiKey.Namespace,
		apiKey.Type,
		apiKey.KeyHash,
		apiKey.PublicKey,
		apiKey.Description,
		apiKey.Active,
		apiKey.RevokedAt,
		apiKey.CreatedAt,
		apiKey.UpdatedAt,
		apiKey.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "api key public key already exists")
		}
		return apperrors.Wrap(err, "failed to create api key")
	}
	return nil
}

// GetByID returns a non-deleted API key of an app.
func (m *MySQLAPIKeyRepository) GetByID(
	ctx context.Context,
	appCode string,
	apiKeyID uuid.UUID,
) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE id = ? AND app_code = ? AND deleted_at IS NULL`

	apiKey, err := scanAPIKey(querier.QueryRowContext(ctx, query, id, appCode), true)
	if err != nil {
		return nil, mapNoRows(err, "failed to get api key by id")
	}
	return apiKey, nil
}

// ListActive returns the active keys of a type. THIRD_PARTY lookups match the
// public key; a nil publicKey matches keys without one.
func (m *MySQLAPIKeyRepository) ListActive(
	ctx context.Context,
	appCode, namespace string,
	keyType apikeyDomain.Type,
	publicKey *string,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE app_code = ? AND namespace = ? AND type = ? AND active = TRUE AND deleted_at IS NULL`
	args := []any{appCode, namespace, keyType}
	if publicKey == nil {
		query += ` AND public_key IS NULL`
	} else {
		query += ` AND public_key = ?`
		args = append(args, *publicKey)
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active api keys")
	}
	return scanAPIKeys(rows, true)
}

// List returns the keys of a namespace ordered by type, newest first.
func (m *MySQLAPIKeyRepository) List(
	ctx context.Context,
	appCode, namespace string,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE app_code = ? AND namespace = ? AND deleted_at IS NULL
			  ORDER BY type ASC, created_at DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	return scanAPIKeys(rows, true)
}

// UpdateKeyHash replaces the key hash and reactivates the key.
func (m *MySQLAPIKeyRepository) UpdateKeyHash(ctx context.Context, apiKeyID uuid.UUID, keyHash string) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET key_hash = ?, active = TRUE, revoked_at = NULL, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, keyHash, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update api key hash")
	}
	return nil
}

// UpdateActive sets the active flag and the revocation time.
func (m *MySQLAPIKeyRepository) UpdateActive(
	ctx context.Context,
	apiKeyID uuid.UUID,
	active bool,
	revokedAt *time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET active = ?, revoked_at = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, active, revokedAt, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update api key active flag")
	}
	return nil
}

// UpdateDescription replaces the description of a key.
func (m *MySQLAPIKeyRepository) UpdateDescription(
	ctx context.Context,
	apiKeyID uuid.UUID,
	description *string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET description = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, description, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update api key description")
	}
	return nil
}

// Delete soft-deletes a key and deactivates it.
func (m *MySQLAPIKeyRepository) Delete(ctx context.Context, apiKeyID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET active = FALSE, deleted_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	return nil
}
