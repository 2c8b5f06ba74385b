package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerd/internal/port"
)

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte) (*port.OCRText, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OCRText), args.Error(1)
}

func (m *MockOCREngine) Name() string {
	args := m.Called()
	return args.String(0)
}
