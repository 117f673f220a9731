// Package repository implements persistence of key records.
//
// Each repository has a PostgreSQL implementation (native UUID, $n placeholders)
// and a MySQL implementation (BINARY(16) UUID, ? placeholders). All methods are
// transaction-aware via database.GetTx().
//
// Versions are unique per type through the UNIQUE(type, version) constraint; a
// violation is reported as keyDomain.ErrVersionConflict so the caller can retry
// with a fresh version.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

const keyColumns = `id, type, version, hashed_secret, hash_bytes, status, duration_amount, duration_unit,
			  expire_at, created_at, updated_at, deleted_at`

// PostgreSQLKeyRepository implements key record persistence for PostgreSQL databases.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - type: VARCHAR(191), version: INTEGER, UNIQUE (type, version)
//   - hashed_secret: TEXT ("{salt}:{hash}")
//   - status: VARCHAR(16) (INACTIVE, ACTIVE, RETIRED)
//   - duration_amount / duration_unit / expire_at: nullable
//   - deleted_at: TIMESTAMPTZ (nullable, soft deletion)
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL key repository instance.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}

// Create inserts a new key record. A duplicate (type, version) returns keyDomain.ErrVersionConflict.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *keyDomain.Key) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_records (` + keyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
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
func (p *PostgreSQLKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyColumns + ` FROM key_records WHERE id = $1 AND deleted_at IS NULL`

	key, err := scanKey(querier.QueryRowContext(ctx, query, keyID), false)
	if err != nil {
		return nil, mapNoRows(err, "failed to get key by id")
	}
	return key, nil
}

// GetActive returns the highest ACTIVE version of a type.
func (p *PostgreSQLKeyRepository) GetActive(ctx context.Context, keyType string) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = $1 AND status = $2 AND deleted_at IS NULL
			  ORDER BY version DESC
			  LIMIT 1`

	key, err := scanKey(
		querier.QueryRowContext(ctx, query, keyType, string(keyDomain.StatusActive)),
		false,
	)
	if err != nil {
		return nil, mapNoRows(err, "failed to get active key")
	}
	return key, nil
}

// GetByTypeAndVersion returns one non-retired version of a type.
func (p *PostgreSQLKeyRepository) GetByTypeAndVersion(
	ctx context.Context,
	keyType string,
	version uint,
) (*keyDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = $1 AND version = $2 AND status <> $3 AND deleted_at IS NULL`

	key, err := scanKey(
		querier.QueryRowContext(ctx, query, keyType, version, string(keyDomain.StatusRetired)),
		false,
	)
	if err != nil {
		return nil, mapNoRows(err, "failed to get key by type and version")
	}
	return key, nil
}

// GetMaxVersion returns the highest version ever created for a type, soft-deleted
// rows included, or 0 when the type has no versions.
func (p *PostgreSQLKeyRepository) GetMaxVersion(ctx context.Context, keyType string) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM key_records WHERE type = $1`

	var version uint
	if err := querier.QueryRowContext(ctx, query, keyType).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max key version")
	}
	return version, nil
}

// UpdateStatus sets the status of a key record.
func (p *PostgreSQLKeyRepository) UpdateStatus(
	ctx context.Context,
	keyID uuid.UUID,
	status keyDomain.Status,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_records SET status = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, string(status), time.Now().UTC(), keyID); err != nil {
		return apperrors.Wrap(err, "failed to update key status")
	}
	return nil
}

// UpdateHashedSecret replaces the verification hash after an in-place regeneration.
func (p *PostgreSQLKeyRepository) UpdateHashedSecret(ctx context.Context, keyID uuid.UUID, hashed string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_records SET hashed_secret = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, hashed, time.Now().UTC(), keyID); err != nil {
		return apperrors.Wrap(err, "failed to update key hashed secret")
	}
	return nil
}

// DemoteActive marks every ACTIVE version of a type except exceptVersion as INACTIVE
// and returns how many rows changed.
func (p *PostgreSQLKeyRepository) DemoteActive(
	ctx context.Context,
	keyType string,
	exceptVersion uint,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_records SET status = $1, updated_at = $2
			  WHERE type = $3 AND status = $4 AND version <> $5`

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

// Delete permanently removes a key record. It is only used to roll back a
// generate whose material could not be persisted.
func (p *PostgreSQLKeyRepository) Delete(ctx context.Context, keyID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM key_records WHERE id = $1`, keyID); err != nil {
		return apperrors.Wrap(err, "failed to delete key")
	}
	return nil
}

// ListByType returns every non-deleted version of a type, newest first.
func (p *PostgreSQLKeyRepository) ListByType(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE type = $1 AND deleted_at IS NULL
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query, keyType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list keys")
	}
	return scanKeys(rows, false)
}

// ListExpired returns up to limit non-retired keys whose expiry is at or before the given time.
func (p *PostgreSQLKeyRepository) ListExpired(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*keyDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyColumns + ` FROM key_records
			  WHERE status <> $1 AND expire_at IS NOT NULL AND expire_at <= $2 AND deleted_at IS NULL
			  ORDER BY expire_at ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, string(keyDomain.StatusRetired), before, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired keys")
	}
	return scanKeys(rows, false)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanKey scans one key row. binaryID selects the MySQL BINARY(16) id encoding.
func scanKey(row rowScanner, binaryID bool) (*keyDomain.Key, error) {
	var (
		key            keyDomain.Key
		rawID          []byte
		status         string
		durationAmount sql.NullInt64
		durationUnit   sql.NullString
	)

	var idDest any = &key.ID
	if binaryID {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&key.Type,
		&key.Version,
		&key.HashedSecret,
		&key.HashBytes,
		&status,
		&durationAmount,
		&durationUnit,
		&key.ExpireAt,
		&key.CreatedAt,
		&key.UpdatedAt,
		&key.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if binaryID {
		if err := key.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal key id")
		}
	}

	key.Status = keyDomain.Status(status)
	if durationAmount.Valid {
		amount := int(durationAmount.Int64)
		key.DurationAmount = &amount
	}
	if durationUnit.Valid {
		unit := keyDomain.DurationUnit(durationUnit.String)
		key.DurationUnit = &unit
	}

	return &key, nil
}

func scanKeys(rows *sql.Rows, binaryID bool) ([]*keyDomain.Key, error) {
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]*keyDomain.Key, 0)
	for rows.Next() {
		key, err := scanKey(rows, binaryID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key")
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate keys")
	}
	return keys, nil
}

func mapNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return keyDomain.ErrKeyNotExist
	}
	return apperrors.Wrap(err, message)
}

func nullableAmount(amount *int) sql.NullInt64 {
	if amount == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*amount), Valid: true}
}

func nullableUnit(unit *keyDomain.DurationUnit) sql.NullString {
	if unit == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*unit), Valid: true}
}
