package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
)

// MySQLConfigRepository implements Config persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLConfigRepository struct {
	db *sql.DB
}

// NewMySQLConfigRepository creates a new MySQL Config repository instance.
func NewMySQLConfigRepository(db *sql.DB) *MySQLConfigRepository {
	return &MySQLConfigRepository{db: db}
}

// Create inserts a new config version.
func (m *MySQLConfigRepository) Create(ctx context.Context, config *configDomain.Config) error {
	querier := database.GetTx(ctx, m.db)

	id, err := config.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config id")
	}

	query := `INSERT INTO configs (` + configColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLConfigRepository) GetByID(
	ctx context.Context,
	appCode string,
	configID uuid.UUID,
) (*configDomain.Config, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := configID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal config id")
	}

	query := `SELECT ` + configColumns + ` FROM configs
			  WHERE id = ? AND app_code = ? AND deleted_at IS NULL`

	config, err := scanConfig(querier.QueryRowContext(ctx, query, id, appCode), true)
	if err != nil {
		return nil, mapNoRows(err, "failed to get config by id")
	}
	return config, nil
}

// GetInUse returns the in-use config version of a namespace.
func (m *MySQLConfigRepository) GetInUse(
	ctx context.Context,
	appCode, namespace string,
) (*configDomain.Config, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + configColumns + ` FROM configs
			  WHERE app_code = ? AND namespace = ? AND is_use = TRUE AND deleted_at IS NULL
			  ORDER BY version DESC
			  LIMIT 1`

	config, err := scanConfig(querier.QueryRowContext(ctx, query, appCode, namespace), true)
	if err != nil {
		return nil, mapNoRows(err, "failed to get config in use")
	}
	return config, nil
}

// GetMaxVersion returns the highest version of a namespace, deleted rows included.
func (m *MySQLConfigRepository) GetMaxVersion(ctx context.Context, appCode, namespace string) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM configs WHERE app_code = ? AND namespace = ?`

	var version uint
	if err := querier.QueryRowContext(ctx, query, appCode, namespace).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max config version")
	}
	return version, nil
}

// UnuseAll clears the in-use flag of every version of a namespace.
func (m *MySQLConfigRepository) UnuseAll(ctx context.Context, appCode, namespace string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE configs SET is_use = FALSE, updated_at = ?
			  WHERE app_code = ? AND namespace = ? AND is_use = TRUE`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), appCode, namespace); err != nil {
		return apperrors.Wrap(err, "failed to unuse configs")
	}
	return nil
}

// UpdateIsUse sets the in-use flag of a version.
func (m *MySQLConfigRepository) UpdateIsUse(ctx context.Context, configID uuid.UUID, isUse bool) error {
	querier := database.GetTx(ctx, m.db)

	id, err := configID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config id")
	}

	query := `UPDATE configs SET is_use = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, isUse, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update config use")
	}
	return nil
}

// UpdatePayload replaces the sealed payload of a version.
func (m *MySQLConfigRepository) UpdatePayload(ctx context.Context, configID uuid.UUID, payload string) error {
	querier := database.GetTx(ctx, m.db)

	id, err := configID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config id")
	}

	query := `UPDATE configs SET payload = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, payload, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update config payload")
	}
	return nil
}

// Delete soft-deletes a version and takes it out of use.
func (m *MySQLConfigRepository) Delete(ctx context.Context, configID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := configID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config id")
	}

	query := `UPDATE configs SET is_use = FALSE, deleted_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to delete config")
	}
	return nil
}

// ListRevisions lists the non-deleted versions of a namespace, in-use first then newest first.
func (m *MySQLConfigRepository) ListRevisions(
	ctx context.Context,
	appCode, namespace string,
) ([]*configDomain.Revision, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, is_use, created_at FROM configs
			  WHERE app_code = ? AND namespace = ? AND deleted_at IS NULL
			  ORDER BY is_use DESC, version DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list config revisions")
	}
	return scanRevisions(rows, true)
}
