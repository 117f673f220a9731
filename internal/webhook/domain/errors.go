package domain

import (
	"github.com/allisson/appconfig/internal/errors"
)

// Stable webhook error codes surfaced to callers.
const (
	CodeWebhookNotExist     = "WEBHOOK_NOT_EXIST"
	CodeWebhookAlreadyExist = "WEBHOOK_ALREADY_EXIST"
)

// Webhook error definitions.
var (
	// ErrWebhookNotExist indicates no webhook matches the lookup.
	ErrWebhookNotExist = errors.Coded(CodeWebhookNotExist, errors.ErrNotFound, "webhook does not exist")

	// ErrWebhookAlreadyExist indicates a webhook with the same trigger and target is registered.
	ErrWebhookAlreadyExist = errors.Coded(CodeWebhookAlreadyExist, errors.ErrConflict, "webhook already exists")

	// ErrInvalidWebhook indicates the webhook fields fail validation.
	ErrInvalidWebhook = errors.Wrap(errors.ErrInvalidInput, "invalid webhook")
)
