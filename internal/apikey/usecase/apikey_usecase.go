package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
	apikeyService "github.com/allisson/appconfig/internal/apikey/service"
	"github.com/allisson/appconfig/internal/errors"
)

// publicKeyLengthProperty is the app config property sizing THIRD_PARTY public keys.
const publicKeyLengthProperty = "PUBLIC_KEY_LENGTH"

// apiKeyUseCase implements the APIKeyUseCase interface.
type apiKeyUseCase struct {
	apiKeyRepo    APIKeyRepository
	configs       ConfigReader
	keys          KeyVerifier
	secretService apikeyService.SecretService
	tokenService  apikeyService.TokenService
	logger        *slog.Logger
}

// NewAPIKeyUseCase creates a new APIKeyUseCase.
func NewAPIKeyUseCase(
	apiKeyRepo APIKeyRepository,
	configs ConfigReader,
	keys KeyVerifier,
	secretService apikeyService.SecretService,
	tokenService apikeyService.TokenService,
	logger *slog.Logger,
) APIKeyUseCase {
	return &apiKeyUseCase{
		apiKeyRepo:    apiKeyRepo,
		configs:       configs,
		keys:          keys,
		secretService: secretService,
		tokenService:  tokenService,
		logger:        logger,
	}
}

func (a *apiKeyUseCase) Generate(ctx context.Context, input *GenerateInput) (*apikeyDomain.Issued, error) {
	if !input.Type.Valid() {
		return nil, apikeyDomain.ErrInvalidType
	}

	var publicKey *string
	if input.Type == apikeyDomain.TypeThirdParty {
		length, err := a.publicKeyLength(ctx, input.AppCode, input.Namespace)
		if err != nil {
			return nil, err
		}
		generated, err := a.secretService.GeneratePublicKey(length)
		if err != nil {
			return nil, err
		}
		publicKey = &generated
	}

	plainKey, keyHash, err := a.secretService.GenerateSecret(input.Length)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	apiKey := &apikeyDomain.APIKey{
		ID:          uuid.Must(uuid.NewV7()),
		AppCode:     input.AppCode,
		Namespace:   input.Namespace,
		Type:        input.Type,
		KeyHash:     keyHash,
		PublicKey:   publicKey,
		Description: input.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.apiKeyRepo.Create(ctx, apiKey); err != nil {
		return nil, err
	}

	token, err := a.sign(ctx, apiKey, plainKey)
	if err != nil {
		return nil, err
	}

	a.logger.Info("api key generated",
		slog.String("app_code", apiKey.AppCode),
		slog.String("namespace", apiKey.Namespace),
		slog.String("api_key_id", apiKey.ID.String()),
		slog.String("type", string(apiKey.Type)),
	)
	return &apikeyDomain.Issued{APIKey: apiKey, Token: token}, nil
}

// publicKeyLength reads PUBLIC_KEY_LENGTH from the in-use app config.
func (a *apiKeyUseCase) publicKeyLength(ctx context.Context, appCode, namespace string) (int, error) {
	config, err := a.configs.Get(ctx, appCode, namespace)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return 0, apikeyDomain.ErrPublicKeyLengthNotConfigured
		}
		return 0, err
	}

	length, err := config.Values.Int(publicKeyLengthProperty)
	if err != nil || length < 1 {
		return 0, apikeyDomain.ErrPublicKeyLengthNotConfigured
	}
	return length, nil
}

func (a *apiKeyUseCase) Validate(ctx context.Context, input *ValidateInput) (bool, error) {
	claims, err := a.tokenService.Parse(ctx, input.AppCode, input.Namespace, input.Token)
	if err != nil {
		return false, err
	}

	if claims.AppCode != input.AppCode || claims.Namespace != input.Namespace || claims.Type != input.Type {
		return false, apikeyDomain.ErrTypeMismatch
	}

	var publicKey *string
	if input.Type == apikeyDomain.TypeThirdParty {
		if input.PublicKey == nil {
			return false, nil
		}
		publicKey = input.PublicKey
	}

	apiKeys, err := a.apiKeyRepo.ListActive(ctx, input.AppCode, input.Namespace, input.Type, publicKey)
	if err != nil {
		return false, err
	}

	for _, apiKey := range apiKeys {
		if a.secretService.CompareSecret(claims.Key, apiKey.KeyHash) {
			return true, nil
		}
	}
	return false, nil
}

func (a *apiKeyUseCase) Reset(
	ctx context.Context,
	appCode string,
	apiKeyID uuid.UUID,
	length int,
) (*apikeyDomain.Issued, error) {
	apiKey, err := a.apiKeyRepo.GetByID(ctx, appCode, apiKeyID)
	if err != nil {
		return nil, err
	}

	plainKey, keyHash, err := a.secretService.GenerateSecret(length)
	if err != nil {
		return nil, err
	}

	if err := a.apiKeyRepo.UpdateKeyHash(ctx, apiKey.ID, keyHash); err != nil {
		return nil, err
	}
	apiKey.KeyHash = keyHash
	apiKey.Active = true
	apiKey.RevokedAt = nil

	token, err := a.sign(ctx, apiKey, plainKey)
	if err != nil {
		return nil, err
	}

	a.logger.Info("api key reset",
		slog.String("app_code", apiKey.AppCode),
		slog.String("api_key_id", apiKey.ID.String()),
	)
	return &apikeyDomain.Issued{APIKey: apiKey, Token: token}, nil
}

func (a *apiKeyUseCase) Toggle(ctx context.Context, appCode string, apiKeyID uuid.UUID) (bool, error) {
	apiKey, err := a.apiKeyRepo.GetByID(ctx, appCode, apiKeyID)
	if err != nil {
		return false, err
	}

	active := !apiKey.Active
	var revokedAt *time.Time
	if !active {
		now := time.Now().UTC()
		revokedAt = &now
	}

	if err := a.apiKeyRepo.UpdateActive(ctx, apiKey.ID, active, revokedAt); err != nil {
		return false, err
	}
	return active, nil
}

func (a *apiKeyUseCase) UpdateDescription(
	ctx context.Context,
	appCode string,
	apiKeyID uuid.UUID,
	description *string,
) error {
	apiKey, err := a.apiKeyRepo.GetByID(ctx, appCode, apiKeyID)
	if err != nil {
		return err
	}
	return a.apiKeyRepo.UpdateDescription(ctx, apiKey.ID, description)
}

func (a *apiKeyUseCase) Delete(ctx context.Context, appCode string, apiKeyID uuid.UUID) error {
	apiKey, err := a.apiKeyRepo.GetByID(ctx, appCode, apiKeyID)
	if err != nil {
		return err
	}
	return a.apiKeyRepo.Delete(ctx, apiKey.ID)
}

func (a *apiKeyUseCase) List(ctx context.Context, appCode, namespace string) ([]*apikeyDomain.APIKey, error) {
	return a.apiKeyRepo.List(ctx, appCode, namespace)
}

func (a *apiKeyUseCase) VerifyKey(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error) {
	return a.keys.Verify(ctx, keyID, candidate)
}

func (a *apiKeyUseCase) sign(ctx context.Context, apiKey *apikeyDomain.APIKey, plainKey string) (string, error) {
	return a.tokenService.Sign(ctx, &apikeyService.Claims{
		AppCode:   apiKey.AppCode,
		Namespace: apiKey.Namespace,
		Type:      apiKey.Type,
		Key:       plainKey,
	})
}
