package messaging

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
)

// Delivery outcomes recorded in metrics.
const (
	deliveryAcked        = "ack"
	deliveryDropped      = "drop"
	deliveryRequeued     = "requeue"
	deliveryDeadLettered = "dead_letter"
)

// Dispatcher runs a Handler for one message, retrying retryable outcomes with exponential
// backoff. A message that exhausts the backoff is requeued at the tail of its topic so
// later events can land first, and dead-lettered once the redeliveries run out.
type Dispatcher struct {
	service   string
	handler   Handler
	policy    RetryPolicy
	publisher Publisher
	logger    *zap.Logger
	metrics   metrics.BusinessMetrics
}

// NewDispatcher creates a Dispatcher. publisher carries requeued and dead-lettered
// messages. When it is nil an exhausted message is left uncommitted and the subscriber
// stops, so it is redelivered after a restart.
func NewDispatcher(
	service string,
	handler Handler,
	policy RetryPolicy,
	publisher Publisher,
	logger *zap.Logger,
	businessMetrics metrics.BusinessMetrics,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Dispatcher{
		service:   service,
		handler:   handler,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		metrics:   businessMetrics,
	}
}

// Process implements Processor.
func (d *Dispatcher) Process(ctx context.Context, msg Message) (bool, error) {
	logger := d.logger.With(
		zap.String("event_type", msg.Type),
		zap.String("event_id", msg.ID),
		zap.String("topic", msg.Topic),
		zap.String("key", msg.Key),
	)

	var last Outcome
	attempt := 0
	operation := func() error {
		attempt++
		last = d.handler.Handle(ctx, msg)
		switch last.Kind {
		case OutcomeAck:
			return nil
		case OutcomeDrop:
			return backoff.Permanent(errDropped(last.Err))
		default:
			if last.Err == nil {
				return ErrRetryRequested
			}
			return last.Err
		}
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("message handling failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(d.newBackOff(), ctx), notify)
	switch {
	case err == nil:
		d.metrics.RecordDelivery(ctx, d.service, msg.Type, deliveryAcked)
		return true, nil
	case last.Kind == OutcomeDrop:
		logger.Warn("message dropped", zap.Error(last.Err))
		d.metrics.RecordDelivery(ctx, d.service, msg.Type, deliveryDropped)
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	}

	if d.publisher == nil {
		logger.Error("message retries exhausted, leaving it uncommitted",
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return false, err
	}

	redeliveries := redeliveryCount(msg)
	if redeliveries < d.policy.MaxRedeliveries {
		logger.Warn("message retries exhausted, requeueing",
			zap.Int("attempts", attempt),
			zap.Int("redeliveries", redeliveries+1),
			zap.Error(err),
		)
		if pubErr := d.publisher.Publish(ctx, requeue(msg, redeliveries+1)); pubErr != nil {
			return false, pubErr
		}
		d.metrics.RecordDelivery(ctx, d.service, msg.Type, deliveryRequeued)
		return true, nil
	}

	logger.Error("message retries exhausted", zap.Int("attempts", attempt), zap.Error(err))
	if pubErr := d.publisher.Publish(ctx, deadLetter(msg, err)); pubErr != nil {
		return false, pubErr
	}
	d.metrics.RecordDelivery(ctx, d.service, msg.Type, deliveryDeadLettered)
	return true, nil
}

func (d *Dispatcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if d.policy.InitialInterval > 0 {
		b.InitialInterval = d.policy.InitialInterval
	}
	if d.policy.MaxInterval > 0 {
		b.MaxInterval = d.policy.MaxInterval
	}
	b.MaxElapsedTime = d.policy.MaxElapsedTime
	b.Reset()
	return b
}

func errDropped(err error) error {
	if err == nil {
		return errors.New("message dropped")
	}
	return err
}

func redeliveryCount(msg Message) int {
	n, err := strconv.Atoi(msg.Headers[HeaderRedeliveries])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func requeue(msg Message, redeliveries int) Message {
	headers := make(map[string]string, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderRedeliveries] = strconv.Itoa(redeliveries)

	return Message{
		ID:      msg.ID,
		Type:    msg.Type,
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

func deadLetter(msg Message, cause error) Message {
	headers := make(map[string]string, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderDLQReason] = cause.Error()

	return Message{
		ID:      msg.ID,
		Type:    msg.Type,
		Topic:   DeadLetterTopic(msg.Topic),
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}
