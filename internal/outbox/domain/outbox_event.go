// Package domain defines the core outbox domain entities and types.
package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/tracing"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent represents an event in the transactional outbox pattern. It is inserted in
// the same transaction as the state change it describes.
type OutboxEvent struct {
	ID           uuid.UUID
	EventType    string
	AggregateKey string
	Payload      string
	Headers      map[string]string
	Status       OutboxEventStatus
	Retries      int
	LastError    *string
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOutboxEvent builds a pending outbox event for payload. The trace context of ctx is
// stored with the event so consumers continue the producer's trace.
func NewOutboxEvent(ctx context.Context, payload events.Payload) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	tracing.Inject(ctx, headers)

	return &OutboxEvent{
		ID:           uuid.Must(uuid.NewV7()),
		EventType:    payload.EventType().String(),
		AggregateKey: payload.Key(),
		Payload:      string(data),
		Headers:      headers,
		Status:       OutboxEventStatusPending,
	}, nil
}

// Message converts the event to its wire form. The topic is the event type.
func (e *OutboxEvent) Message() messaging.Message {
	return messaging.Message{
		ID:      e.ID.String(),
		Type:    e.EventType,
		Topic:   e.EventType,
		Key:     e.AggregateKey,
		Value:   []byte(e.Payload),
		Headers: e.Headers,
	}
}
