// Package mocks provides mock implementations of the config usecase interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
)

// MockConfigRepository is a mock implementation of ConfigRepository.
type MockConfigRepository struct {
	mock.Mock
}

// Create mocks the Create method of ConfigRepository.
func (m *MockConfigRepository) Create(ctx context.Context, config *configDomain.Config) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

// GetByID mocks the GetByID method of ConfigRepository.
func (m *MockConfigRepository) GetByID(
	ctx context.Context,
	appCode string,
	configID uuid.UUID,
) (*configDomain.Config, error) {
	args := m.Called(ctx, appCode, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configDomain.Config), args.Error(1)
}

// GetInUse mocks the GetInUse method of ConfigRepository.
func (m *MockConfigRepository) GetInUse(ctx context.Context, appCode, namespace string) (*configDomain.Config, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configDomain.Config), args.Error(1)
}

// GetMaxVersion mocks the GetMaxVersion method of ConfigRepository.
func (m *MockConfigRepository) GetMaxVersion(ctx context.Context, appCode, namespace string) (uint, error) {
	args := m.Called(ctx, appCode, namespace)
	return args.Get(0).(uint), args.Error(1)
}

// UnuseAll mocks the UnuseAll method of ConfigRepository.
func (m *MockConfigRepository) UnuseAll(ctx context.Context, appCode, namespace string) error {
	args := m.Called(ctx, appCode, namespace)
	return args.Error(0)
}

// UpdateIsUse mocks the UpdateIsUse method of ConfigRepository.
func (m *MockConfigRepository) UpdateIsUse(ctx context.Context, configID uuid.UUID, isUse bool) error {
	args := m.Called(ctx, configID, isUse)
	return args.Error(0)
}

// UpdatePayload mocks the UpdatePayload method of ConfigRepository.
func (m *MockConfigRepository) UpdatePayload(ctx context.Context, configID uuid.UUID, payload string) error {
	args := m.Called(ctx, configID, payload)
	return args.Error(0)
}

// Delete mocks the Delete method of ConfigRepository.
func (m *MockConfigRepository) Delete(ctx context.Context, configID uuid.UUID) error {
	args := m.Called(ctx, configID)
	return args.Error(0)
}

// ListRevisions mocks the ListRevisions method of ConfigRepository.
func (m *MockConfigRepository) ListRevisions(
	ctx context.Context,
	appCode, namespace string,
) ([]*configDomain.Revision, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*configDomain.Revision), args.Error(1)
}

// MockConfigUseCase is a mock implementation of ConfigUseCase.
type MockConfigUseCase struct {
	mock.Mock
}

// Up mocks the Up method of ConfigUseCase.
func (m *MockConfigUseCase) Up(
	ctx context.Context,
	appCode, namespace string,
	values configDomain.Values,
) (*configDomain.Config, error) {
	args := m.Called(ctx, appCode, namespace, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configDomain.Config), args.Error(1)
}

// Get mocks the Get method of ConfigUseCase.
func (m *MockConfigUseCase) Get(ctx context.Context, appCode, namespace string) (*configDomain.Config, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configDomain.Config), args.Error(1)
}

// ToggleUse mocks the ToggleUse method of ConfigUseCase.
func (m *MockConfigUseCase) ToggleUse(ctx context.Context, appCode string, configID uuid.UUID) (bool, error) {
	args := m.Called(ctx, appCode, configID)
	return args.Bool(0), args.Error(1)
}

// Remove mocks the Remove method of ConfigUseCase.
func (m *MockConfigUseCase) Remove(ctx context.Context, appCode string, configID uuid.UUID) error {
	args := m.Called(ctx, appCode, configID)
	return args.Error(0)
}

// Rollback mocks the Rollback method of ConfigUseCase.
func (m *MockConfigUseCase) Rollback(
	ctx context.Context,
	appCode string,
	configID uuid.UUID,
) (*configDomain.Config, error) {
	args := m.Called(ctx, appCode, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configDomain.Config), args.Error(1)
}

// History mocks the History method of ConfigUseCase.
func (m *MockConfigUseCase) History(
	ctx context.Context,
	appCode, namespace string,
) ([]*configDomain.Revision, error) {
	args := m.Called(ctx, appCode, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*configDomain.Revision), args.Error(1)
}
