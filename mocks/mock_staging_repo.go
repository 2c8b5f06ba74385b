package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ledgerd/internal/domain"
)

// MockStagingRepo is a mock implementation of port.StagingRepository.
type MockStagingRepo struct {
	mock.Mock
}

func (m *MockStagingRepo) Upsert(ctx context.Context, row *domain.StagingRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockStagingRepo) ListByImport(ctx context.Context, importID uuid.UUID) ([]domain.StagingRow, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagingRow), args.Error(1)
}

func (m *MockStagingRepo) DeleteByImport(ctx context.Context, importID uuid.UUID) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}
