// Package usecase implements webhook registration for application namespaces.
// Auth keys are sealed under the rotating webhook key of the (app code, namespace)
// pair and resealed on read when they were opened with a grace-period key.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/envelope"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	webhookDomain "github.com/allisson/appconfig/internal/webhook/domain"
)

// WebhookRepository defines the interface for webhook persistence.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *webhookDomain.Webhook) error
	ExistsForTarget(
		ctx context.Context,
		appCode, namespace string,
		triggerType webhookDomain.TriggerType,
		triggerOn webhookDomain.TriggerOn,
		targetURL string,
	) (bool, error)
	GetByID(ctx context.Context, appCode string, webhookID uuid.UUID) (*webhookDomain.Webhook, error)
	Update(ctx context.Context, webhook *webhookDomain.Webhook) error
	UpdateIsActive(ctx context.Context, webhookID uuid.UUID, isActive bool) error
	UpdateAuthKey(ctx context.Context, webhookID uuid.UUID, authKey string) error
	Delete(ctx context.Context, webhookID uuid.UUID) error
	List(ctx context.Context, appCode, namespace string) ([]*webhookDomain.Webhook, error)
}

// EnvelopeCodec seals and opens values under a rotating key.
type EnvelopeCodec interface {
	Seal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error)
	Reseal(ctx context.Context, keyType string, opts keyDomain.RotateOptions, value any) (string, error)
	Open(
		ctx context.Context,
		keyType string,
		opts keyDomain.RotateOptions,
		stored string,
		out any,
	) (*envelope.Opened, error)
}

// RegisterInput holds the fields of a new webhook. AuthKey is the plain auth key;
// blank means none.
type RegisterInput struct {
	AppCode     string
	Namespace   string
	Name        string
	TriggerType webhookDomain.TriggerType
	TriggerOn   webhookDomain.TriggerOn
	TargetURL   string
	Method      webhookDomain.Method
	AuthKey     string
	BodyType    webhookDomain.BodyType
}

// UpdateInput holds the fields to change. Nil fields keep their value; an empty
// AuthKey removes the auth key.
type UpdateInput struct {
	ID          uuid.UUID
	AppCode     string
	Name        *string
	TriggerType *webhookDomain.TriggerType
	TriggerOn   *webhookDomain.TriggerOn
	TargetURL   *string
	Method      *webhookDomain.Method
	AuthKey     *string
	BodyType    *webhookDomain.BodyType
}

// WebhookUseCase defines the webhook operations.
type WebhookUseCase interface {
	// Register creates an inactive webhook. A webhook with the same trigger and
	// target fails with ErrWebhookAlreadyExist.
	Register(ctx context.Context, input *RegisterInput) (*webhookDomain.Webhook, error)

	Update(ctx context.Context, input *UpdateInput) (*webhookDomain.Webhook, error)

	// Toggle flips the active flag and returns the new state.
	Toggle(ctx context.Context, appCode string, webhookID uuid.UUID) (bool, error)

	Delete(ctx context.Context, appCode string, webhookID uuid.UUID) error

	// List returns the webhooks of a namespace without their auth keys.
	List(ctx context.Context, appCode, namespace string) ([]*webhookDomain.Webhook, error)

	// Get returns a webhook with its auth key opened.
	Get(ctx context.Context, appCode string, webhookID uuid.UUID) (*webhookDomain.Detail, error)
}
