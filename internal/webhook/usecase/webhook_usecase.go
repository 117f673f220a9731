package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	webhookDomain "github.com/allisson/appconfig/internal/webhook/domain"
)

// webhookUseCase implements the WebhookUseCase interface.
type webhookUseCase struct {
	webhookRepo WebhookRepository
	codec       EnvelopeCodec
	policy      keyDomain.KeyPolicy
	logger      *slog.Logger
}

// NewWebhookUseCase creates a new WebhookUseCase.
func NewWebhookUseCase(
	webhookRepo WebhookRepository,
	codec EnvelopeCodec,
	policy keyDomain.KeyPolicy,
	logger *slog.Logger,
) WebhookUseCase {
	return &webhookUseCase{
		webhookRepo: webhookRepo,
		codec:       codec,
		policy:      policy,
		logger:      logger,
	}
}

func (w *webhookUseCase) Register(
	ctx context.Context,
	input *RegisterInput,
) (*webhookDomain.Webhook, error) {
	now := time.Now().UTC()
	webhook := &webhookDomain.Webhook{
		ID:          uuid.Must(uuid.NewV7()),
		AppCode:     input.AppCode,
		Namespace:   input.Namespace,
		Name:        input.Name,
		TriggerType: input.TriggerType,
		TriggerOn:   input.TriggerOn,
		TargetURL:   input.TargetURL,
		Method:      input.Method,
		BodyType:    input.BodyType,
		IsActive:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if webhook.TriggerType == "" {
		webhook.TriggerType = webhookDomain.TriggerChange
	}
	if webhook.BodyType == "" {
		webhook.BodyType = webhookDomain.BodyJSON
	}

	if err := webhook.Validate(); err != nil {
		return nil, err
	}

	exists, err := w.webhookRepo.ExistsForTarget(
		ctx,
		webhook.AppCode,
		webhook.Namespace,
		webhook.TriggerType,
		webhook.TriggerOn,
		webhook.TargetURL,
	)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, webhookDomain.ErrWebhookAlreadyExist
	}

	if strings.TrimSpace(input.AuthKey) != "" {
		sealed, err := w.sealAuthKey(ctx, webhook.AppCode, webhook.Namespace, input.AuthKey)
		if err != nil {
			return nil, err
		}
		webhook.AuthKey = &sealed
	}

	if err := w.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}

	w.logger.Info("webhook registered",
		slog.String("app_code", webhook.AppCode),
		slog.String("namespace", webhook.Namespace),
		slog.String("webhook_id", webhook.ID.String()),
	)
	return webhook, nil
}

func (w *webhookUseCase) Update(ctx context.Context, input *UpdateInput) (*webhookDomain.Webhook, error) {
	webhook, err := w.webhookRepo.GetByID(ctx, input.AppCode, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		webhook.Name = *input.Name
	}
	if input.TriggerType != nil {
		webhook.TriggerType = *input.TriggerType
	}
	if input.TriggerOn != nil {
		webhook.TriggerOn = *input.TriggerOn
	}
	if input.TargetURL != nil {
		webhook.TargetURL = *input.TargetURL
	}
	if input.Method != nil {
		webhook.Method = *input.Method
	}
	if input.BodyType != nil {
		webhook.BodyType = *input.BodyType
	}

	if err := webhook.Validate(); err != nil {
		return nil, err
	}

	if input.AuthKey != nil {
		webhook.AuthKey = nil
		if strings.TrimSpace(*input.AuthKey) != "" {
			sealed, err := w.sealAuthKey(ctx, webhook.AppCode, webhook.Namespace, *input.AuthKey)
			if err != nil {
				return nil, err
			}
			webhook.AuthKey = &sealed
		}
	}

	webhook.UpdatedAt = time.Now().UTC()
	if err := w.webhookRepo.Update(ctx, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

func (w *webhookUseCase) Toggle(ctx context.Context, appCode string, webhookID uuid.UUID) (bool, error) {
	webhook, err := w.webhookRepo.GetByID(ctx, appCode, webhookID)
	if err != nil {
		return false, err
	}

	isActive := !webhook.IsActive
	if err := w.webhookRepo.UpdateIsActive(ctx, webhook.ID, isActive); err != nil {
		return false, err
	}
	return isActive, nil
}

func (w *webhookUseCase) Delete(ctx context.Context, appCode string, webhookID uuid.UUID) error {
	webhook, err := w.webhookRepo.GetByID(ctx, appCode, webhookID)
	if err != nil {
		return err
	}
	return w.webhookRepo.Delete(ctx, webhook.ID)
}

func (w *webhookUseCase) List(ctx context.Context, appCode, namespace string) ([]*webhookDomain.Webhook, error) {
	return w.webhookRepo.List(ctx, appCode, namespace)
}

// Get opens the auth key. A key opened with a grace-period secret is resealed
// under the new key and persisted (refresh) before returning.
func (w *webhookUseCase) Get(
	ctx context.Context,
	appCode string,
	webhookID uuid.UUID,
) (*webhookDomain.Detail, error) {
	webhook, err := w.webhookRepo.GetByID(ctx, appCode, webhookID)
	if err != nil {
		return nil, err
	}

	detail := &webhookDomain.Detail{Webhook: webhook}
	if webhook.AuthKey == nil {
		return detail, nil
	}

	keyType, err := keyDomain.TypeFor(keyDomain.PurposeWebhookAuthKey, webhook.AppCode, webhook.Namespace)
	if err != nil {
		return nil, err
	}
	opts := w.policy.RotateOptions()

	var authKey string
	opened, err := w.codec.Open(ctx, keyType, opts, *webhook.AuthKey, &authKey)
	if err != nil {
		return nil, err
	}
	detail.PlainAuthKey = &authKey

	if opened.NeedsReseal {
		if err := w.refreshAuthKey(ctx, keyType, webhook, authKey); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (w *webhookUseCase) refreshAuthKey(
	ctx context.Context,
	keyType string,
	webhook *webhookDomain.Webhook,
	authKey string,
) error {
	sealed, err := w.codec.Reseal(ctx, keyType, w.policy.RotateOptions(), authKey)
	if err != nil {
		return err
	}
	if err := w.webhookRepo.UpdateAuthKey(ctx, webhook.ID, sealed); err != nil {
		return err
	}
	webhook.AuthKey = &sealed

	w.logger.Info("webhook auth key refreshed",
		slog.String("app_code", webhook.AppCode),
		slog.String("namespace", webhook.Namespace),
		slog.String("webhook_id", webhook.ID.String()),
	)
	return nil
}

func (w *webhookUseCase) sealAuthKey(ctx context.Context, appCode, namespace, authKey string) (string, error) {
	keyType, err := keyDomain.TypeFor(keyDomain.PurposeWebhookAuthKey, appCode, namespace)
	if err != nil {
		return "", err
	}
	return w.codec.Seal(ctx, keyType, w.policy.RotateOptions(), authKey)
}
