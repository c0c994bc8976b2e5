package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records use case executions and message flow across services.
type BusinessMetrics interface {
	// RecordOperation counts a use case execution.
	// Domain examples: "orders", "inventory", "payments"
	// Operation examples: "create_order", "reserve_stock", "create_billing"
	// Status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long a use case execution took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordDelivery counts a consumed message by its final outcome ("ack", "drop", "dead_letter").
	RecordDelivery(ctx context.Context, service, eventType, outcome string)

	// RecordPublish counts an outbox event handed to the transport ("published" or "error").
	RecordPublish(ctx context.Context, service, eventType, status string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	deliveryCounter  metric.Int64Counter
	publishCounter   metric.Int64Counter
}

// NewBusinessMetrics creates the OpenTelemetry instruments under namespace (e.g., "starsoft").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of use case executions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of use case executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	deliveryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_message_deliveries_total", namespace),
		metric.WithDescription("Total number of consumed messages by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	publishCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_outbox_publishes_total", namespace),
		metric.WithDescription("Total number of outbox events handed to the transport"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publish counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		deliveryCounter:  deliveryCounter,
		publishCounter:   publishCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDelivery(ctx context.Context, service, eventType, outcome string) {
	b.deliveryCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", service),
			attribute.String("event_type", eventType),
			attribute.String("outcome", outcome),
		),
	)
}

func (b *businessMetrics) RecordPublish(ctx context.Context, service, eventType, status string) {
	b.publishCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", service),
			attribute.String("event_type", eventType),
			attribute.String("status", status),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordDelivery(ctx context.Context, service, eventType, outcome string) {}

func (n *NoOpBusinessMetrics) RecordPublish(ctx context.Context, service, eventType, status string) {}
