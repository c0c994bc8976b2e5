// Package memory implements the messaging transport in process on gocloud.dev mempubsub.
// Every consumer group gets its own subscription per topic, so a message fans out to all
// groups and is handled once per group.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
	"golang.org/x/sync/errgroup"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/tracing"
)

const (
	metadataKey         = "message-key"
	defaultAckDeadline  = 30 * time.Second
	defaultShutdownWait = 5 * time.Second
)

// Broker owns the in-memory topics and subscriptions.
type Broker struct {
	ackDeadline time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
	subs   map[string]*pubsub.Subscription
	closed bool
}

// NewBroker creates an empty Broker.
func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		ackDeadline: defaultAckDeadline,
		logger:      logger,
		topics:      make(map[string]*pubsub.Topic),
		subs:        make(map[string]*pubsub.Subscription),
	}
}

// Declare creates the subscriptions of group for topics. Messages published before a
// group's subscription exists are not delivered to it, so consumers are declared before
// producers start.
func (b *Broker) Declare(group string, topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errBrokerClosed
	}
	for _, topic := range topics {
		b.subscriptionLocked(group, topic)
	}
	return nil
}

// Publish implements messaging.Publisher.
func (b *Broker) Publish(ctx context.Context, msgs ...messaging.Message) error {
	for _, msg := range msgs {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return errBrokerClosed
		}
		topic := b.topicLocked(msg.Topic)
		b.mu.Unlock()

		if err := topic.Send(ctx, toPubsubMessage(ctx, msg)); err != nil {
			return err
		}
	}
	return nil
}

// Subscriber returns a messaging.Subscriber consuming as group.
func (b *Broker) Subscriber(group string) *Subscriber {
	return &Subscriber{broker: b, group: group}
}

// Close shuts down every subscription and topic.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownWait)
	defer cancel()

	var errs []error
	for _, sub := range b.subs {
		if err := sub.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, topic := range b.topics {
		if err := topic.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Broker) topicLocked(name string) *pubsub.Topic {
	topic, ok := b.topics[name]
	if !ok {
		topic = mempubsub.NewTopic()
		b.topics[name] = topic
	}
	return topic
}

func (b *Broker) subscriptionLocked(group, topic string) *pubsub.Subscription {
	key := group + "/" + topic
	sub, ok := b.subs[key]
	if !ok {
		sub = mempubsub.NewSubscription(b.topicLocked(topic), b.ackDeadline)
		b.subs[key] = sub
	}
	return sub
}

var errBrokerClosed = errors.New("memory broker closed")

// Subscriber consumes topics of a Broker as one consumer group.
type Subscriber struct {
	broker *Broker
	group  string
}

// Subscribe implements messaging.Subscriber. One goroutine receives per topic.
func (s *Subscriber) Subscribe(ctx context.Context, topics []string, p messaging.Processor) error {
	s.broker.mu.Lock()
	if s.broker.closed {
		s.broker.mu.Unlock()
		return errBrokerClosed
	}
	subs := make(map[string]*pubsub.Subscription, len(topics))
	for _, topic := range topics {
		subs[topic] = s.broker.subscriptionLocked(s.group, topic)
	}
	s.broker.mu.Unlock()

	logger := s.broker.logger.With(zap.String("group_id", s.group), zap.Strings("topics", topics))
	logger.Info("memory subscriber started")

	g, gctx := errgroup.WithContext(ctx)
	for topic, sub := range subs {
		g.Go(func() error {
			return s.receive(gctx, topic, sub, p)
		})
	}

	err := g.Wait()
	logger.Info("memory subscriber stopped")
	return err
}

// Close is a no-op; subscriptions are owned by the Broker.
func (s *Subscriber) Close() error {
	return nil
}

func (s *Subscriber) receive(ctx context.Context, topic string, sub *pubsub.Subscription, p messaging.Processor) error {
	for {
		pm, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		msg := fromPubsubMessage(topic, pm)
		commit, err := p.Process(tracing.Extract(ctx, msg.Headers), msg)
		if !commit {
			if pm.Nackable() {
				pm.Nack()
			}
			if err != nil && ctx.Err() == nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		pm.Ack()
	}
}

func toPubsubMessage(ctx context.Context, msg messaging.Message) *pubsub.Message {
	metadata := make(map[string]string, len(msg.Headers)+3)
	for k, v := range msg.Headers {
		metadata[k] = v
	}
	if _, ok := metadata["traceparent"]; !ok {
		tracing.Inject(ctx, metadata)
	}
	metadata[messaging.HeaderEventType] = msg.Type
	metadata[messaging.HeaderEventID] = msg.ID
	metadata[metadataKey] = msg.Key

	return &pubsub.Message{Body: msg.Value, Metadata: metadata}
}

func fromPubsubMessage(topic string, pm *pubsub.Message) messaging.Message {
	headers := make(map[string]string, len(pm.Metadata))
	for k, v := range pm.Metadata {
		if k == metadataKey {
			continue
		}
		headers[k] = v
	}
	return messaging.Message{
		ID:      pm.Metadata[messaging.HeaderEventID],
		Type:    pm.Metadata[messaging.HeaderEventType],
		Topic:   topic,
		Key:     pm.Metadata[metadataKey],
		Value:   pm.Body,
		Headers: headers,
	}
}
