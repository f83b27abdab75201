package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	args := m.Called(ctx, text, targetLang)
	return args.String(0), args.Error(1)
}

func (m *MockClient) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entity), args.Error(1)
}

func (m *MockClient) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Sentiment), args.Error(1)
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Chat(ctx context.Context, history []Message, input string) (string, error) {
	args := m.Called(ctx, history, input)
	return args.String(0), args.Error(1)
}
