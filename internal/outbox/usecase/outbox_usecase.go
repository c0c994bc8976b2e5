// Package usecase implements the transactional outbox: services enqueue events in the
// same transaction as their state change and a relay publishes them to the transport.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor defines the interface for delivering one outbox event
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase implements the relay loop for one service's outbox
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *zap.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *zap.Logger,
) *OutboxUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start starts the outbox event processing loop
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		zap.Duration("interval", uc.config.Interval),
		zap.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", zap.Error(err))
			}
		}
	}
}

// ProcessEvents retrieves and processes pending events from the outbox in a transaction
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", zap.Int("count", len(events)))

		for _, event := range events {
			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process event",
					zap.String("event_id", event.ID.String()),
					zap.String("event_type", event.EventType),
					zap.Int("retries", event.Retries+1),
					zap.Error(err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := time.Now().UTC()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// PublishingProcessor publishes outbox events to the message transport
type PublishingProcessor struct {
	service   string
	publisher messaging.Publisher
	metrics   metrics.BusinessMetrics
}

// NewPublishingProcessor creates a new PublishingProcessor
func NewPublishingProcessor(
	service string,
	publisher messaging.Publisher,
	businessMetrics metrics.BusinessMetrics,
) *PublishingProcessor {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &PublishingProcessor{service: service, publisher: publisher, metrics: businessMetrics}
}

// Process publishes the event keyed by its aggregate
func (p *PublishingProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	if err := p.publisher.Publish(ctx, event.Message()); err != nil {
		p.metrics.RecordPublish(ctx, p.service, event.EventType, "error")
		return err
	}
	p.metrics.RecordPublish(ctx, p.service, event.EventType, "success")
	return nil
}

// Emitter enqueues events into the outbox of the current transaction.
type Emitter struct {
	outboxRepo OutboxEventRepository
}

// NewEmitter creates a new Emitter
func NewEmitter(outboxRepo OutboxEventRepository) *Emitter {
	return &Emitter{outboxRepo: outboxRepo}
}

// Emit stores payloads as pending outbox events. Call it inside TxManager.WithTx so the
// events commit together with the state change.
func (e *Emitter) Emit(ctx context.Context, payloads ...events.Payload) error {
	for _, payload := range payloads {
		event, err := domain.NewOutboxEvent(ctx, payload)
		if err != nil {
			return err
		}
		if err := e.outboxRepo.Create(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
