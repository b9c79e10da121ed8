package mocks

import (
	"context"

	"github.com/pageza/recipegen/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockGeneratorService is a mock implementation of the generator service
type MockGeneratorService struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockGeneratorService) Generate(ctx context.Context, req types.GenerateRequest) (*types.GeneratedRecipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeneratedRecipe), args.Error(1)
}

// Diagnostics mocks the Diagnostics method
func (m *MockGeneratorService) Diagnostics() types.GenerationDiagnostics {
	args := m.Called()
	return args.Get(0).(types.GenerationDiagnostics)
}

// MockSessionService is a mock implementation of the session token validator
type MockSessionService struct {
	mock.Mock
}

// ValidateToken mocks the ValidateToken method
func (m *MockSessionService) ValidateToken(token string) (*types.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SessionClaims), args.Error(1)
}
