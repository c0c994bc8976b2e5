// Package mocks provides mock implementations of the messaging interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
)

// MockPublisher is a mock implementation of messaging.Publisher.
type MockPublisher struct {
	mock.Mock
}

// Publish mocks the Publish method of Publisher. The variadic messages are passed to
// Called as a single slice.
func (m *MockPublisher) Publish(ctx context.Context, msgs ...messaging.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// Close mocks the Close method of Publisher.
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
