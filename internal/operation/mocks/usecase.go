// Package mocks provides mock implementations of the operation interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

// MockUseCase is a mock implementation of operation.UseCase. Configure it with
// Return(value, err); a non-nil err produces a failed Result.
type MockUseCase[In, Out any] struct {
	mock.Mock
}

// Execute mocks the Execute method of UseCase.
func (m *MockUseCase[In, Out]) Execute(ctx context.Context, in In) result.Result[Out] {
	args := m.Called(ctx, in)

	var out Out
	if v := args.Get(0); v != nil {
		out = v.(Out)
	}
	return result.From(out, args.Error(1))
}
