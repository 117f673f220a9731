// Package repository implements API key persistence for PostgreSQL and MySQL.
// Removal is a soft delete and lookups never return deleted keys.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
)

const apiKeyColumns = `id, app_code, namespace, type, key_hash, public_key, description, active, revoked_at, ` +
	`created_at, updated_at, deleted_at`

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL databases.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository instance.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}

// Create inserts a new API key.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (` + apiKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		apiKey.ID,
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
func (p *PostgreSQLAPIKeyRepository) GetByID(
	ctx context.Context,
	appCode string,
	apiKeyID uuid.UUID,
) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE id = $1 AND app_code = $2 AND deleted_at IS NULL`

	apiKey, err := scanAPIKey(querier.QueryRowContext(ctx, query, apiKeyID, appCode), false)
	if err != nil {
		return nil, mapNoRows(err, "failed to get api key by id")
	}
	return apiKey, nil
}

// ListActive returns the active keys of a type. THIRD_PARTY lookups match the
// public key; a nil publicKey matches keys without one.
func (p *PostgreSQLAPIKeyRepository) ListActive(
	ctx context.Context,
	appCode, namespace string,
	keyType apikeyDomain.Type,
	publicKey *string,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE app_code = $1 AND namespace = $2 AND type = $3 AND active = TRUE AND deleted_at IS NULL`
	args := []any{appCode, namespace, keyType}
	if publicKey == nil {
		query += ` AND public_key IS NULL`
	} else {
		query += ` AND public_key = $4`
		args = append(args, *publicKey)
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active api keys")
	}
	return scanAPIKeys(rows, false)
}

// List returns the keys of a namespace ordered by type, newest first.
func (p *PostgreSQLAPIKeyRepository) List(
	ctx context.Context,
	appCode, namespace string,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE app_code = $1 AND namespace = $2 AND deleted_at IS NULL
			  ORDER BY type ASC, created_at DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	return scanAPIKeys(rows, false)
}

// UpdateKeyHash replaces the key hash and reactivates the key.
func (p *PostgreSQLAPIKeyRepository) UpdateKeyHash(ctx context.Context, apiKeyID uuid.UUID, keyHash string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET key_hash = $1, active = TRUE, revoked_at = NULL, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, keyHash, time.Now().UTC(), apiKeyID); err != nil {
		return apperrors.Wrap(err, "failed to update api key hash")
	}
	return nil
}

// UpdateActive sets the active flag and the revocation time.
func (p *PostgreSQLAPIKeyRepository) UpdateActive(
	ctx context.Context,
	apiKeyID uuid.UUID,
	active bool,
	revokedAt *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET active = $1, revoked_at = $2, updated_at = $3 WHERE id = $4`

	if _, err := querier.ExecContext(ctx, query, active, revokedAt, time.Now().UTC(), apiKeyID); err != nil {
		return apperrors.Wrap(err, "failed to update api key active flag")
	}
	return nil
}

// UpdateDescription replaces the description of a key.
func (p *PostgreSQLAPIKeyRepository) UpdateDescription(
	ctx context.Context,
	apiKeyID uuid.UUID,
	description *string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET description = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, description, time.Now().UTC(), apiKeyID); err != nil {
		return apperrors.Wrap(err, "failed to update api key description")
	}
	return nil
}

// Delete soft-deletes a key and deactivates it.
func (p *PostgreSQLAPIKeyRepository) Delete(ctx context.Context, apiKeyID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET active = FALSE, deleted_at = $1 WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), apiKeyID); err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAPIKey scans one api key row. binaryID selects the MySQL BINARY(16) id encoding.
func scanAPIKey(row rowScanner, binaryID bool) (*apikeyDomain.APIKey, error) {
	var (
		apiKey      apikeyDomain.APIKey
		publicKey   sql.NullString
		description sql.NullString
		rawID       []byte
	)

	var idDest any = &apiKey.ID
	if binaryID {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&apiKey.AppCode,
		&apiKey.Namespace,
		&apiKey.Type,
		&apiKey.KeyHash,
		&publicKey,
		&description,
		&apiKey.Active,
		&apiKey.RevokedAt,
		&apiKey.CreatedAt,
		&apiKey.UpdatedAt,
		&apiKey.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if publicKey.Valid {
		apiKey.PublicKey = &publicKey.String
	}
	if description.Valid {
		apiKey.Description = &description.String
	}
	if binaryID {
		if err := apiKey.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
		}
	}
	return &apiKey, nil
}

func scanAPIKeys(rows *sql.Rows, binaryID bool) ([]*apikeyDomain.APIKey, error) {
	defer func() {
		_ = rows.Close()
	}()

	apiKeys := make([]*apikeyDomain.APIKey, 0)
	for rows.Next() {
		apiKey, err := scanAPIKey(rows, binaryID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key")
		}
		apiKeys = append(apiKeys, apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate api keys")
	}
	return apiKeys, nil
}

func mapNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apikeyDomain.ErrAPIKeyNotExist
	}
	return apperrors.Wrap(err, message)
}
