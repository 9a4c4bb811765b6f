package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"leakscan/internal/port"
)

// MockInferenceProvider is a mock implementation of port.InferenceProvider.
type MockInferenceProvider struct {
	mock.Mock
}

func (m *MockInferenceProvider) Complete(ctx context.Context, req port.CompletionRequest) (*port.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.Completion), args.Error(1)
}

func (m *MockInferenceProvider) Model() string {
	args := m.Called()
	return args.String(0)
}
