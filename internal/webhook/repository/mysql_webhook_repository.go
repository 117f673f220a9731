package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/database"
	apperrors "github.com/allisson/appconfig/internal/errors"
	webhookDomain "github.com/allisson/appconfig/internal/webhook/domain"
)

// MySQLWebhookRepository implements Webhook persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLWebhookRepository struct {
	db *sql.DB
}

// NewMySQLWebhookRepository creates a new MySQL Webhook repository instance.
func NewMySQLWebhookRepository(db *sql.DB) *MySQLWebhookRepository {
	return &MySQLWebhookRepository{db: db}
}

// Create inserts a new webhook.
func (m *MySQLWebhookRepository) Create(ctx context.Context, webhook *webhookDomain.Webhook) error {
	querier := database.GetTx(ctx, m.db)

	id, err := webhook.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `INSERT INTO webhooks (` + webhookColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLWebhookRepository) ExistsForTarget(
	ctx context.Context,
	appCode, namespace string,
	triggerType webhookDomain.TriggerType,
	triggerOn webhookDomain.TriggerOn,
	targetURL string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM webhooks
				WHERE app_code = ? AND namespace = ? AND trigger_type = ? AND trigger_on = ?
				  AND target_url = ? AND deleted_at IS NULL
			  )`

	var exists bool
	err := querier.QueryRowContext(ctx, query, appCode, namespace, triggerType, triggerOn, targetURL).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check webhook target")
	}
	return exists, nil
}

// GetByID returns a webhook of an app, including its sealed auth key.
func (m *MySQLWebhookRepository) GetByID(
	ctx context.Context,
	appCode string,
	webhookID uuid.UUID,
) (*webhookDomain.Webhook, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := webhookID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `SELECT ` + webhookColumns + ` FROM webhooks
			  WHERE id = ? AND app_code = ? AND deleted_at IS NULL`

	webhook, err := scanWebhook(querier.QueryRowContext(ctx, query, id, appCode), true)
	if err != nil {
		return nil, mapNoRows(err, "failed to get webhook by id")
	}
	return webhook, nil
}

// Update replaces the editable fields of a webhook.
func (m *MySQLWebhookRepository) Update(ctx context.Context, webhook *webhookDomain.Webhook) error {
	querier := database.GetTx(ctx, m.db)

	id, err := webhook.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `UPDATE webhooks
			  SET name = ?, trigger_type = ?, trigger_on = ?, target_url = ?, method = ?,
			      auth_key = ?, body_type = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
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
		id,
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
func (m *MySQLWebhookRepository) UpdateIsActive(ctx context.Context, webhookID uuid.UUID, isActive bool) error {
	querier := database.GetTx(ctx, m.db)

	id, err := webhookID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `UPDATE webhooks SET is_active = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, isActive, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update webhook active flag")
	}
	return nil
}

// UpdateAuthKey replaces the sealed auth key of a webhook.
func (m *MySQLWebhookRepository) UpdateAuthKey(ctx context.Context, webhookID uuid.UUID, authKey string) error {
	querier := database.GetTx(ctx, m.db)

	id, err := webhookID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `UPDATE webhooks SET auth_key = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, authKey, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to update webhook auth key")
	}
	return nil
}

// Delete soft-deletes a webhook and deactivates it.
func (m *MySQLWebhookRepository) Delete(ctx context.Context, webhookID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := webhookID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook id")
	}

	query := `UPDATE webhooks SET is_active = FALSE, deleted_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to delete webhook")
	}
	return nil
}

// List returns the webhooks of a namespace, newest first, without auth keys.
func (m *MySQLWebhookRepository) List(
	ctx context.Context,
	appCode, namespace string,
) ([]*webhookDomain.Webhook, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + listColumns + ` FROM webhooks
			  WHERE app_code = ? AND namespace = ? AND deleted_at IS NULL
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, appCode, namespace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	return scanWebhooks(rows, true)
}
