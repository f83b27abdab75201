package media

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStudio is a mock implementation of Studio using testify/mock.
type MockStudio struct {
	mock.Mock
}

func (m *MockStudio) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	args := m.Called(ctx, prompt, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStudio) DescribeImage(ctx context.Context, png []byte, mode AnalysisMode) (string, error) {
	args := m.Called(ctx, png, mode)
	return args.String(0), args.Error(1)
}

func (m *MockStudio) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	args := m.Called(ctx, audio, filename)
	return args.String(0), args.Error(1)
}
