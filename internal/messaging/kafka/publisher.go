// Package kafka implements the messaging transport on top of segmentio/kafka-go.
package kafka

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/tracing"
)

// writer is the subset of *kafkago.Writer used by Publisher.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes messages to Kafka. Messages are partitioned by key.
type Publisher struct {
	writer writer
	logger *zap.Logger
}

// NewPublisher creates a Publisher for brokers. The destination topic is taken from each
// message.
func NewPublisher(brokers []string, logger *zap.Logger) *Publisher {
	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, logger)
}

func newPublisher(w writer, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish implements messaging.Publisher.
func (p *Publisher) Publish(ctx context.Context, msgs ...messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafkago.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toKafkaMessage(ctx, msg))
	}

	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		p.logger.Error("failed to write kafka messages", zap.Int("count", len(out)), zap.Error(err))
		return err
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toKafkaMessage(ctx context.Context, msg messaging.Message) kafkago.Message {
	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if _, ok := headers["traceparent"]; !ok {
		tracing.Inject(ctx, headers)
	}
	if msg.Type != "" {
		headers[messaging.HeaderEventType] = msg.Type
	}
	if msg.ID != "" {
		headers[messaging.HeaderEventID] = msg.ID
	}

	kafkaHeaders := make([]kafkago.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafkago.Header{Key: k, Value: []byte(v)})
	}

	return kafkago.Message{
		Topic:   msg.Topic,
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: kafkaHeaders,
	}
}

func fromKafkaMessage(km kafkago.Message) messaging.Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return messaging.Message{
		ID:      headers[messaging.HeaderEventID],
		Type:    headers[messaging.HeaderEventType],
		Topic:   km.Topic,
		Key:     string(km.Key),
		Value:   km.Value,
		Headers: headers,
	}
}
