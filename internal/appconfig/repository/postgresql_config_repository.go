// Package repository implements persistence of config versions for PostgreSQL and MySQL.
// Versions are unique per (app_code, namespace); removal is a soft delete.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
)

const configColumns = `id, app_code, namespace, version, is_use, payload, created_at, updated_at, deleted_at`

// PostgreSQLConfigRepository implements Config persistence for PostgreSQL databases.
type PostgreSQLConfigRepository struct {
	db *sql.DB
}

// NewPostgreSQLConfigRepository creates a new PostgreSQL Config repository instance.
func NewPostgreSQLConfigRepository(db *sql.DB) *PostgreSQLConfigRepository {
	return &PostgreSQLConfigRepository{db: db}
}

// Create inserts a new config version.
func (p *PostgreSQLConfigRepository) Create(ctx context.Context, config *configDomain.Config) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO configs (` + configColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		config.ID,
		config.AppCode,
		config.Namespace,
		config.Version,
		config.IsUse,
		config.Payload,
		config.CreatedAt,
		config.UpdatedAt,
		config.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "config version already exists")
		}
		return apperrors.Wrap(err, "failed to create config")
	}
	return nil
}

// GetByID returns a non-deleted config version of an app.
func (p *PostgreSQLConfigRepository) GetByID(
	ctx context.Context,
	appCode string,
	configID uuid.UUID,
) (*configDomain.Config, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + configColumns + ` FROM configs
			  WHERE id = $1 AND app_code = $2 AND deleted_at IS NULL`

	config, err := scanConfig(querier.QueryRowContext(ctx, query, configID, appCode), false)
	if err != nil {
		return nil, mapNoRows(err, "failed to get config by id")
	}
	return config, nil
}

// GetInUse returns the in-use config version of a namespace.
func (p *PostgreSQLConfigRepository) GetInUse(
	ctx context.Context,
	appCode, namespace string,
) (*configDomain.Config, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + configColumns + ` FROM configs
			  WHERE app_code = $1 AND namespace = $2 AND is_use = TRUE AND deleted_at IS NULL
			  ORDER BY version DESC
			  LIMIT 1`

	config, err := scanConfig(querier.QueryRowContext(ctx, query, appCode, namespace), false)
	if err != nil {
		return nil, mapNoRows(err, "failed to get config in use")
	}
	return config, nil
}

// GetMaxVersion returns the highest version of a namespace, deleted rows included.
func (p *PostgreSQLConfigRepository) GetMaxVersion(ctx context.Context, appCode, namespace string) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM configs WHERE app_code = $1 AND namespace = $2`

	var version uint
	if err := querier.QueryRowContext(ctx, query, appCode, namespace).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max config version")
	}
	return version, nil
}

// UnuseAll clears the in-use flag of every version of a namespace.
func (p *PostgreSQLConfigRepository) UnuseAll(ctx context.Context, appCode, namespace string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE configs SET is_use = FALSE, updated_at = $1
			  WHERE app_code = $2 AND namespace = $3 AND is_use = TRUE`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), appCode, namespace); err != nil {
		return apperrors.Wrap(err, "failed to unuse configs")
	}
	return nil
}

// UpdateIsUse sets the in-use flag of a version.
func (p *PostgreSQLConfigRepository) UpdateIsUse(ctx context.Context, configID uuid.UUID, isUse bool) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE configs SET is_use = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, isUse, time.Now().UTC(), configID); err != nil {
		return apperrors.Wrap(err, "failed to update config use")
	}
	return nil
}

// UpdatePayload replaces the sealed payload of a version.
func (p *PostgreSQLConfigRepository) UpdatePayload(ctx context.Context, configID uuid.UUID, payload string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE configs SET payload = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, payload, time.Now().UTC(), configID); err != nil {
		return apperrors.Wrap(err, "failed to update config payload")
	}
	return nil
}

// Delete soft-deletes a version and takes it out of use.
func (p *PostgreSQLConfigRepository) Delete(ctx context.Context, configID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE configs SET is_use = FALSE, deleted_at = $1 WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), configID); err != nil {
		return apperrors.Wrap(err, "failed to delete config")
	}
	return nil
}

// ListRevisions lists the non-deleted versions of a namespace, in-use first then newest first.
func (p *PostgreSQLConfigRepository) ListRevisions(
	ctx context.Context,
	appCode, namespace string,
) ([]*configDomain.Revision, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, is_use, created_at FROM configs
			  WHERE app_code = $1 AND namespace = $2 AND deleted_at IS NULL
			  ORDER BY is_use DESC, version DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list config revisions")
	}
	return scanRevisions(rows, false)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConfig scans one config row. binaryID selects the MySQL BINARY(16) id encoding.
func scanConfig(row rowScanner, binaryID bool) (*configDomain.Config, error) {
	var (
		config configDomain.Config
		rawID  []byte
	)

	var idDest any = &config.ID
	if binaryID {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&config.AppCode,
		&config.Namespace,
		&config.Version,
		&config.IsUse,
		&config.Payload,
		&config.CreatedAt,
		&config.UpdatedAt,
		&config.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if binaryID {
		if err := config.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal config id")
		}
	}
	return &config, nil
}

func scanRevisions(rows *sql.Rows, binaryID bool) ([]*configDomain.Revision, error) {
	defer func() {
		_ = rows.Close()
	}()

	revisions := make([]*configDomain.Revision, 0)
	for rows.Next() {
		var (
			revision configDomain.Revision
			rawID    []byte
		)

		var idDest any = &revision.ID
		if binaryID {
			idDest = &rawID
		}

		if err := rows.Scan(idDest, &revision.Version, &revision.IsUse, &revision.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan config revision")
		}
		if binaryID {
			if err := revision.ID.UnmarshalBinary(rawID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal config id")
			}
		}
		revisions = append(revisions, &revision)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate config revisions")
	}
	return revisions, nil
}

func mapNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return configDomain.ErrConfigNotExist
	}
	return apperrors.Wrap(err, message)
}
