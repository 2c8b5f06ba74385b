package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerd/internal/parser"
)

// MockVisionTier is a mock implementation of pipeline.VisionTier.
type MockVisionTier struct {
	mock.Mock
}

func (m *MockVisionTier) Parse(ctx context.Context, image []byte, imageType string) (*parser.Result, error) {
	args := m.Called(ctx, image, imageType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parser.Result), args.Error(1)
}

// MockTextTier is a mock implementation of pipeline.TextTier.
type MockTextTier struct {
	mock.Mock
}

func (m *MockTextTier) Parse(ctx context.Context, text string) (*parser.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parser.Result), args.Error(1)
}
