package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// MySQLKeyRepository implements key record persistence for MySQL databases.
//
// UUIDs are stored as BINARY(16) and marshaled with uuid.MarshalBinary(). The
// schema otherwise matches the PostgreSQL one, with DATETIME(6) timestamps.
type MySQLKeyRepository struct {
	db *sql.DB
}

// NewMySQLKeyRepository creates a new MySQL key repository instance.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}

// Create inserts a new key record. A duplicate (type, version) returns keyDomain.ErrVersionConflict.
func (m *MySQLKeyRepository) Create(ctx context.Context, key *keyDomain.Key) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_records (` + keyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		key.Type,
		key.Version,
		key.HashedSecret,
		key.HashBytes,
		string(key.Status),
		nullableAmount(key.DurationAmount),
		nullableUnit(key.DurationUnit),
		key.ExpireAt,
		key.CreatedAt,
		key.UpdatedAt,
		key.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return keyDomain.ErrVersionConflict
		}
		return apperrors.Wrap(err, "failed to create key")
	}
	return nil
}

// GetByID returns a non-deleted key record of any status.
func (m *MySQLKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `SELECT ` + keyColumns + ` FROM key_records WHERE id = ? AND deleted_at IS NULL`

	key, err := scanKey(querier.QueryRowContext(ctx, query, id), true)
	if err != nil {
		return nil, mapNoRows(err, "failed to get key by id")
	}
	return key, nil
}

// GetActive returns the highest ACTIVE version of a type.
func (m *MySQLKeyRepository) GetActive(ctx context.Context, keyType string) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = ? AND status = ? AND deleted_at IS NULL
			  ORDER BY version DESC
			  LIMIT 1`

	key, err := scanKey(
		querier.QueryRowContext(ctx, query, keyType, string(keyDomain.StatusActive)),
		true,
	)
	if err != nil {
		return nil, mapNoRows(err, "failed to get active key")
	}
	return key, nil
}

// GetByTypeAndVersion returns one non-retired version of a type.
func (m *MySQLKeyRepository) GetByTypeAndVersion(
	ctx context.Context,
	keyType string,
	version uint,
) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = ? AND version = ? AND status <> ? AND deleted_at IS NULL`

	key, err := scanKey(
		querier.QueryRowContext(ctx, query, keyType, version, string(keyDomain.StatusRetired)),
		true,
	)
	if err != nil {
		return nil, mapNoRows(err, "failed to get key by type and version")
	}
	return key, nil
}

// GetMaxVersion returns the highest version ever created for a type, soft-deleted
// rows included, or 0 when the type has no versions.
func (m *MySQLKeyRepository) GetMaxVersion(ctx context.Context, keyType string) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM key_records WHERE type = ?`

	var version uint
	if err := querier.QueryRowContext(ctx, query, keyType).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max key version")
	}
	return version, nil
}

// UpdateStatus sets the status of a key record.
func (m *MySQLKeyRepository) UpdateStatus(ctx context.Context, keyID uuid.UUID, status keyDomain.Status) error {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `UPDATE key_records SET status = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, string(status), time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update key status")
	}
	return nil
}

// UpdateHashedSecret replaces the verification hash after an in-place regeneration.
func (m *MySQLKeyRepository) UpdateHashedSecret(ctx context.Context, keyID uuid.UUID, hashed string) error {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `UPDATE key_records SET hashed_secret = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, hashed, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update key hashed secret")
	}
	return nil
}

// DemoteActive marks every ACTIVE version of a type except exceptVersion as INACTIVE.
func (m *MySQLKeyRepository) DemoteActive(ctx context.Context, keyType string, exceptVersion uint) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_records SET status = ?, updated_at = ?
			  WHERE type = ? AND status = ? AND version <> ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(keyDomain.StatusInactive),
		time.Now().UTC(),
		keyType,
		string(keyDomain.StatusActive),
		exceptVersion,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to demote active keys")
	}
	return result.RowsAffected()
}

// Delete permanently removes a key record.
func (m *MySQLKeyRepository) Delete(ctx context.Context, keyID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM key_records WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete key")
	}
	return nil
}

// ListByType returns every non-deleted version of a type, newest first.
func (m *MySQLKeyRepository) ListByType(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = ? AND deleted_at IS NULL
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query, keyType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list keys")
	}
	return scanKeys(rows, true)
}

// ListExpired returns up to limit non-retired keys whose expiry is at or before the given time.
func (m *MySQLKeyRepository) ListExpired(ctx context.Context, before time.Time, limit int) ([]*keyDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE status <> ? AND expire_at IS NOT NULL AND expire_at <= ? AND deleted_at IS NULL
			  ORDER BY expire_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, string(keyDomain.StatusRetired), before, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired keys")
	}
	return scanKeys(rows, true)
}
