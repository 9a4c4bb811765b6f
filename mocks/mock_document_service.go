package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"leakscan/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Extract(ctx context.Context, input *service.ExtractInput) (*service.ExtractResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractResult), args.Error(1)
}

func (m *MockDocumentService) VisionExtract(ctx context.Context, input *service.VisionExtractInput) (*service.VisionExtractResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VisionExtractResult), args.Error(1)
}
