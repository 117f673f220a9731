// Package mocks provides mock implementations of the api key usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
)

// MockAPIKeyRepository is a mock implementation of APIKeyRepository.
type MockAPIKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of APIKeyRepository.
func (m *MockAPIKeyRepository) Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

// GetByID mocks the GetByID method of APIKeyRepository.
func (m *MockAPIKeyRepository) GetByID(
	ctx context.Context,
	appCode string,
	apiKeyID uuid.UUID,
) (*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, appCode, apiKeyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.APIKey), args.Error(1)
}

// ListActive mocks the ListActive method of APIKeyRepository.
func (m *MockAPIKeyRepository) ListActive(
	ctx context.Context,
	appCode, namespace string,
	keyType apikeyDomain.Type,
	publicKey *string,
) ([]*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, appCode, namespace, keyType, publicKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikeyDomain.APIKey), args.Error(1)
}

// List mocks the List method of APIKeyRepository.
func (m *MockAPIKeyRepository) List(ctx context.Context, appCode, namespace string) ([]*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikeyDomain.APIKey), args.Error(1)
}

// UpdateKeyHash mocks the UpdateKeyHash method of APIKeyRepository.
func (m *MockAPIKeyRepository) UpdateKeyHash(ctx context.Context, apiKeyID uuid.UUID, keyHash string) error {
	args := m.Called(ctx, apiKeyID, keyHash)
	return args.Error(0)
}

// UpdateActive mocks the UpdateActive method of APIKeyRepository.
func (m *MockAPIKeyRepository) UpdateActive(
	ctx context.Context,
	apiKeyID uuid.UUID,
	active bool,
	revokedAt *time.Time,
) error {
	args := m.Called(ctx, apiKeyID, active, revokedAt)
	return args.Error(0)
}

// UpdateDescription mocks the UpdateDescription method of APIKeyRepository.
func (m *MockAPIKeyRepository) UpdateDescription(
	ctx context.Context,
	apiKeyID uuid.UUID,
	description *string,
) error {
	args := m.Called(ctx, apiKeyID, description)
	return args.Error(0)
}

// Delete mocks the Delete method of APIKeyRepository.
func (m *MockAPIKeyRepository) Delete(ctx context.Context, apiKeyID uuid.UUID) error {
	args := m.Called(ctx, apiKeyID)
	return args.Error(0)
}
