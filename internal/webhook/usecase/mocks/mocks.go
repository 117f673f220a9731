// Package mocks provides mock implementations of the webhook usecase interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	webhookDomain "github.com/allisson/appconfig/internal/webhook/domain"
)

// MockWebhookRepository is a mock implementation of WebhookRepository.
type MockWebhookRepository struct {
	mock.Mock
}

// Create mocks the Create method of WebhookRepository.
func (m *MockWebhookRepository) Create(ctx context.Context, webhook *webhookDomain.Webhook) error {
	args := m.Called(ctx, webhook)
	return args.Error(0)
}

// ExistsForTarget mocks the ExistsForTarget method of WebhookRepository.
func (m *MockWebhookRepository) ExistsForTarget(
	ctx context.Context,
	appCode, namespace string,
	triggerType webhookDomain.TriggerType,
	triggerOn webhookDomain.TriggerOn,
	targetURL string,
) (bool, error) {
	args := m.Called(ctx, appCode, namespace, triggerType, triggerOn, targetURL)
	return args.Bool(0), args.Error(1)
}

// GetByID mocks the GetByID method of WebhookRepository.
func (m *MockWebhookRepository) GetByID(
	ctx context.Context,
	appCode string,
	webhookID uuid.UUID,
) (*webhookDomain.Webhook, error) {
	args := m.Called(ctx, appCode, webhookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookDomain.Webhook), args.Error(1)
}

// Update mocks the Update method of WebhookRepository.
func (m *MockWebhookRepository) Update(ctx context.Context, webhook *webhookDomain.Webhook) error {
	args := m.Called(ctx, webhook)
	return args.Error(0)
}

// UpdateIsActive mocks the UpdateIsActive method of WebhookRepository.
func (m *MockWebhookRepository) UpdateIsActive(ctx context.Context, webhookID uuid.UUID, isActive bool) error {
	args := m.Called(ctx, webhookID, isActive)
	return args.Error(0)
}

// UpdateAuthKey mocks the UpdateAuthKey method of WebhookRepository.
func (m *MockWebhookRepository) UpdateAuthKey(ctx context.Context, webhookID uuid.UUID, authKey string) error {
	args := m.Called(ctx, webhookID, authKey)
	return args.Error(0)
}

// Delete mocks the Delete method of WebhookRepository.
func (m *MockWebhookRepository) Delete(ctx context.Context, webhookID uuid.UUID) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

// List mocks the List method of WebhookRepository.
func (m *MockWebhookRepository) List(
	ctx context.Context,
	appCode, namespace string,
) ([]*webhookDomain.Webhook, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhookDomain.Webhook), args.Error(1)
}
