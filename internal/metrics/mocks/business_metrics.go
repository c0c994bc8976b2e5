// Package mocks provides mock implementations of the metrics interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockBusinessMetrics is a mock implementation of metrics.BusinessMetrics.
type MockBusinessMetrics struct {
	mock.Mock
}

// RecordOperation mocks the RecordOperation method of BusinessMetrics.
func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

// RecordDuration mocks the RecordDuration method of BusinessMetrics.
func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// RecordDelivery mocks the RecordDelivery method of BusinessMetrics.
func (m *MockBusinessMetrics) RecordDelivery(ctx context.Context, service, eventType, outcome string) {
	m.Called(ctx, service, eventType, outcome)
}

// RecordPublish mocks the RecordPublish method of BusinessMetrics.
func (m *MockBusinessMetrics) RecordPublish(ctx context.Context, service, eventType, status string) {
	m.Called(ctx, service, eventType, status)
}
