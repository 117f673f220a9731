// Package mocks provides mock implementations of the key usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// MockKeyUseCase is a mock implementation of KeyUseCase.
type MockKeyUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method of KeyUseCase.
func (m *MockKeyUseCase) Generate(
	ctx context.Context,
	input keyDomain.GenerateInput,
) (*keyDomain.RotateKey, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyDomain.RotateKey), args.Error(1)
}

// GetRotateKey mocks the GetRotateKey method of KeyUseCase.
func (m *MockKeyUseCase) GetRotateKey(
	ctx context.Context,
	keyType string,
	opts keyDomain.RotateOptions,
) (*keyDomain.RotateKey, error) {
	args := m.Called(ctx, keyType, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyDomain.RotateKey), args.Error(1)
}

// Verify mocks the Verify method of KeyUseCase.
func (m *MockKeyUseCase) Verify(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error) {
	args := m.Called(ctx, keyID, candidate)
	return args.Bool(0), args.Error(1)
}

// List mocks the List method of KeyUseCase.
func (m *MockKeyUseCase) List(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	args := m.Called(ctx, keyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keyDomain.Key), args.Error(1)
}

// RetireExpired mocks the RetireExpired method of KeyUseCase.
func (m *MockKeyUseCase) RetireExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	args := m.Called(ctx, before, limit)
	return args.Int(0), args.Error(1)
}

// MockMaterialStore is a mock implementation of MaterialStore.
type MockMaterialStore struct {
	mock.Mock
}

// Put mocks the Put method of MaterialStore.
func (m *MockMaterialStore) Put(ctx context.Context, keyType string, version uint, material keyDomain.Material) error {
	args := m.Called(ctx, keyType, version, material)
	return args.Error(0)
}

// Resolve mocks the Resolve method of MaterialStore.
func (m *MockMaterialStore) Resolve(ctx context.Context, keyType string, version uint) (*keyDomain.Material, error) {
	args := m.Called(ctx, keyType, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyDomain.Material), args.Error(1)
}

// Delete mocks the Delete method of MaterialStore.
func (m *MockMaterialStore) Delete(ctx context.Context, keyType string, version uint) error {
	args := m.Called(ctx, keyType, version)
	return args.Error(0)
}
