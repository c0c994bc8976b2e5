// Package mocks provides mock implementations of the outbox interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
)

// MockEmitter is a mock implementation of an event emitter. The variadic payloads are
// recorded as a single []events.Payload argument.
type MockEmitter struct {
	mock.Mock
}

// Emit mocks the Emit method of Emitter.
func (m *MockEmitter) Emit(ctx context.Context, payloads ...events.Payload) error {
	args := m.Called(ctx, payloads)
	return args.Error(0)
}
