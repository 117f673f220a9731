// Package repository implements webhook persistence for PostgreSQL and MySQL.
// Removal is a soft delete and lookups never return deleted webhooks.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
	webhookDomain "github.com/allisson/appconfig/internal/webhook/domain"
)

const webhookColumns = `id, app_code, namespace, name, trigger_type, trigger_on, target_url, method, auth_key, ` +
	`body_type, is_active, created_at, updated_at, deleted_at`

// listColumns never selects the sealed auth key.
var listColumns = strings.Replace(webhookColumns, "auth_key", "NULL AS auth_key", 1)

// PostgreSQLWebhookRepository implements Webhook persistence for PostgreSQL databases.
type PostgreSQLWebhookRepository struct {
	db *sql.DB
}

// NewPostgreSQLWebhookRepository creates a new PostgreSQL Webhook repository instance.
func NewPostgreSQLWebhookRepository(db *sql.DB) *PostgreSQLWebhookRepository {
	return &PostgreSQLWebhookRepository{db: db}
}

// Create inserts a new webhook.
func (p *PostgreSQLWebhookRepository) Create(ctx context.Context, webhook *webhookDomain.Webhook) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO webhooks (` + webhookColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(
		ctx,
		query,
		webhook.ID,
		webhook.AppCode,
		webhook.Namespace,
		webhook.Name,
		webhook.TriggerType,
		webhook.TriggerOn,
		webhook.TargetURL,
		webhook.Method,
		webhook.AuthKey,
		webhook.BodyType,
		webhook.IsActive,
		webhook.CreatedAt,
		webhook.UpdatedAt,
		webhook.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return webhookDomain.ErrWebhookAlreadyExist
		}
		return apperrors.Wrap(err, "failed to create webhook")
	}
	return nil
}

// ExistsForTarget reports whether a webhook with the same trigger already calls targetURL.
func (p *PostgreSQLWebhookRepository) ExistsForTarget(
	ctx context.Context,
	appCode, namespace string,
	triggerType webhookDomain.TriggerType,
	triggerOn webhookDomain.TriggerOn,
	targetURL string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM webhooks
				WHERE app_code = $1 AND namespace = $2 AND trigger_type = $3 AND trigger_on = $4
				  AND target_url = $5 AND deleted_at IS NULL
			  )`

	var exists bool
	err := querier.QueryRowContext(ctx, query, appCode, namespace, triggerType, triggerOn, targetURL).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check webhook target")
	}
	return exists, nil
}

// GetByID returns a webhook of an app, including its sealed auth key.
func (p *PostgreSQLWebhookRepository) GetByID(
	ctx context.Context,
	appCode string,
	webhookID uuid.UUID,
) (*webhookDomain.Webhook, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + webhookColumns + ` FROM webhooks
			  WHERE id = $1 AND app_code = $2 AND deleted_at IS NULL`

	webhook, err := scanWebhook(querier.QueryRowContext(ctx, query, webhookID, appCode), false)
	if err != nil {
		return nil, mapNoRows(err, "failed to get webhook by id")
	}
	return webhook, nil
}

// Update replaces the editable fields of a webhook.
func (p *PostgreSQLWebhookRepository) Update(ctx context.Context, webhook *webhookDomain.Webhook) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhooks
			  SET name = $1, trigger_type = $2, trigger_on = $3, target_url = $4, method = $5,
			      auth_key = $6, body_type = $7, updated_at = $8
			  WHERE id = $9`

	_, err := querier.ExecContext(
		ctx,
		query,
		webhook.Name,
		webhook.TriggerType,
		webhook.TriggerOn,
		webhook.TargetURL,
		webhook.Method,
		webhook.AuthKey,
		webhook.BodyType,
		webhook.UpdatedAt,
		webhook.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return webhookDomain.ErrWebhookAlreadyExist
		}
		return apperrors.Wrap(err, "failed to update webhook")
	}
	return nil
}

// UpdateIsActive sets the active flag of a webhook.
func (p *PostgreSQLWebhookRepository) UpdateIsActive(ctx context.Context, webhookID uuid.UUID, isActive bool) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhooks SET is_active = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, isActive, time.Now().UTC(), webhookID); err != nil {
		return apperrors.Wrap(err, "failed to update webhook active flag")
	}
	return nil
}

// UpdateAuthKey replaces the sealed auth key of a webhook.
func (p *PostgreSQLWebhookRepository) UpdateAuthKey(ctx context.Context, webhookID uuid.UUID, authKey string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhooks SET auth_key = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, authKey, time.Now().UTC(), webhookID); err != nil {
		return apperrors.Wrap(err, "failed to update webhook auth key")
	}
	return nil
}

// Delete soft-deletes a webhook and deactivates it.
func (p *PostgreSQLWebhookRepository) Delete(ctx context.Context, webhookID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhooks SET is_active = FALSE, deleted_at = $1 WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), webhookID); err != nil {
		return apperrors.Wrap(err, "failed to delete webhook")
	}
	return nil
}

// List returns the webhooks of a namespace, newest first, without auth keys.
func (p *PostgreSQLWebhookRepository) List(
	ctx context.Context,
	appCode, namespace string,
) ([]*webhookDomain.Webhook, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + listColumns + ` FROM webhooks
			  WHERE app_code = $1 AND namespace = $2 AND deleted_at IS NULL
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	return scanWebhooks(rows, false)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanWebhook scans one webhook row. binaryID selects the MySQL BINARY(16) id encoding.
func scanWebhook(row rowScanner, binaryID bool) (*webhookDomain.Webhook, error) {
	var (
		webhook webhookDomain.Webhook
		authKey sql.NullString
		rawID   []byte
	)

	var idDest any = &webhook.ID
	if binaryID {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&webhook.AppCode,
		&webhook.Namespace,
		&webhook.Name,
		&webhook.TriggerType,
		&webhook.TriggerOn,
		&webhook.TargetURL,
		&webhook.Method,
		&authKey,
		&webhook.BodyType,
		&webhook.IsActive,
		&webhook.CreatedAt,
		&webhook.UpdatedAt,
		&webhook.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if authKey.Valid {
		webhook.AuthKey = &authKey.String
	}
	if binaryID {
		if err := webhook.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal webhook id")
		}
	}
	return &webhook, nil
}

func scanWebhooks(rows *sql.Rows, binaryID bool) ([]*webhookDomain.Webhook, error) {
	defer func() {
		_ = rows.Close()
	}()

	webhooks := make([]*webhookDomain.Webhook, 0)
	for rows.Next() {
		webhook, err := scanWebhook(rows, binaryID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook")
		}
		webhooks = append(webhooks, webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhooks")
	}
	return webhooks, nil
}

func mapNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return webhookDomain.ErrWebhookNotExist
	}
	return apperrors.Wrap(err, message)
}
