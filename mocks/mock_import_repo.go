package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ledgerd/internal/domain"
)

// MockImportRepo is a mock implementation of port.ImportRepository.
type MockImportRepo struct {
	mock.Mock
}

func (m *MockImportRepo) Create(ctx context.Context, imp *domain.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepo) GetByID(ctx context.Context, userID, importID uuid.UUID) (*domain.Import, error) {
	args := m.Called(ctx, userID, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Import), args.Error(1)
}

func (m *MockImportRepo) UpdateStatus(ctx context.Context, imp *domain.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepo) ListAutoCommittable(ctx context.Context, limit int) ([]domain.Import, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Import), args.Error(1)
}
