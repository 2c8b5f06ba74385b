package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerd/internal/port"
)

// MockChatModel is a mock implementation of port.ChatModel.
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockChatModel) Model() string {
	args := m.Called()
	return args.String(0)
}
