package app

import (
	"fmt"

	apikeyRepository "github.com/allisson/appconfig/internal/apikey/repository"
	apikeyService "github.com/allisson/appconfig/internal/apikey/service"
	apikeyUseCase "github.com/allisson/appconfig/internal/apikey/usecase"
	configRepository "github.com/allisson/appconfig/internal/appconfig/repository"
	configUseCase "github.com/allisson/appconfig/internal/appconfig/usecase"
	webhookRepository "github.com/allisson/appconfig/internal/webhook/repository"
	webhookUseCase "github.com/allisson/appconfig/internal/webhook/usecase"
)

// ConfigRepository returns the config version repository based on database driver.
func (c *Container) ConfigRepository() (configUseCase.ConfigRepository, error) {
	var err error
	c.configRepositoryInit.Do(func() {
		c.configRepository, err = c.initConfigRepository()
		if err != nil {
			c.initErrors["configRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["configRepository"]; exists {
		return nil, storedErr
	}
	return c.configRepository, nil
}

// ConfigUseCase returns the config versioning use case.
func (c *Container) ConfigUseCase() (configUseCase.ConfigUseCase, error) {
	var err error
	c.configUseCaseInit.Do(func() {
		c.configUseCase, err = c.initConfigUseCase()
		if err != nil {
			c.initErrors["configUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["configUseCase"]; exists {
		return nil, storedErr
	}
	return c.configUseCase, nil
}

// WebhookRepository returns the webhook repository based on database driver.
func (c *Container) WebhookRepository() (webhookUseCase.WebhookRepository, error) {
	var err error
	c.webhookRepositoryInit.Do(func() {
		c.webhookRepository, err = c.initWebhookRepository()
		if err != nil {
			c.initErrors["webhookRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookRepository"]; exists {
		return nil, storedErr
	}
	return c.webhookRepository, nil
}

// WebhookUseCase returns the webhook use case.
func (c *Container) WebhookUseCase() (webhookUseCase.WebhookUseCase, error) {
	var err error
	c.webhookUseCaseInit.Do(func() {
		c.webhookUseCase, err = c.initWebhookUseCase()
		if err != nil {
			c.initErrors["webhookUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookUseCase"]; exists {
		return nil, storedErr
	}
	return c.webhookUseCase, nil
}

// APIKeyRepository returns the API key repository based on database driver.
func (c *Container) APIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeyRepositoryInit.Do(func() {
		c.apiKeyRepository, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepository, nil
}

// APIKeySecretService returns the argon2id API key hashing service.
func (c *Container) APIKeySecretService() apikeyService.SecretService {
	c.apiKeySecretServiceInit.Do(func() {
		c.apiKeySecretService = apikeyService.NewSecretService()
	})
	return c.apiKeySecretService
}

// APIKeyTokenService returns the API key token signer.
func (c *Container) APIKeyTokenService() (apikeyService.TokenService, error) {
	var err error
	c.apiKeyTokenServiceInit.Do(func() {
		c.apiKeyTokenService, err = c.initAPIKeyTokenService()
		if err != nil {
			c.initErrors["apiKeyTokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyTokenService"]; exists {
		return nil, storedErr
	}
	return c.apiKeyTokenService, nil
}

// APIKeyUseCase returns the API key use case.
func (c *Container) APIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUseCaseInit.Do(func() {
		c.apiKeyUseCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeyUseCase, nil
}

func (c *Container) initConfigRepository() (configUseCase.ConfigRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for config repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return configRepository.NewMySQLConfigRepository(db), nil
	case "postgres":
		return configRepository.NewPostgreSQLConfigRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initConfigUseCase() (configUseCase.ConfigUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for config use case: %w", err)
	}

	repo, err := c.ConfigRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get config repository for config use case: %w", err)
	}

	codec, err := c.Codec()
	if err != nil {
		return nil, fmt.Errorf("failed to get codec for config use case: %w", err)
	}

	policy, err := c.KeyPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get key policy for config use case: %w", err)
	}

	return configUseCase.NewConfigUseCase(txManager, repo, codec, policy, c.Logger()), nil
}

func (c *Container) initWebhookRepository() (webhookUseCase.WebhookRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for webhook repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return webhookRepository.NewMySQLWebhookRepository(db), nil
	case "postgres":
		return webhookRepository.NewPostgreSQLWebhookRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initWebhookUseCase() (webhookUseCase.WebhookUseCase, error) {
	repo, err := c.WebhookRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook repository for webhook use case: %w", err)
	}

	codec, err := c.Codec()
	if err != nil {
		return nil, fmt.Errorf("failed to get codec for webhook use case: %w", err)
	}

	policy, err := c.KeyPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get key policy for webhook use case: %w", err)
	}

	return webhookUseCase.NewWebhookUseCase(repo, codec, policy, c.Logger()), nil
}

func (c *Container) initAPIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return apikeyRepository.NewMySQLAPIKeyRepository(db), nil
	case "postgres":
		return apikeyRepository.NewPostgreSQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAPIKeyTokenService() (apikeyService.TokenService, error) {
	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for api key token service: %w", err)
	}

	policy, err := c.KeyPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get key policy for api key token service: %w", err)
	}

	return apikeyService.NewTokenService(keys, policy), nil
}

func (c *Container) initAPIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	repo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}

	configs, err := c.ConfigUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get config use case for api key use case: %w", err)
	}

	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for api key use case: %w", err)
	}

	tokenService, err := c.APIKeyTokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for api key use case: %w", err)
	}

	return apikeyUseCase.NewAPIKeyUseCase(
		repo,
		configs,
		keys,
		c.APIKeySecretService(),
		tokenService,
		c.Logger(),
	), nil
}
