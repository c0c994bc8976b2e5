package kafka

import (
	"context"
	"errors"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/tracing"
)

// reader is the subset of *kafkago.Reader used by Subscriber.
type reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type readerFactory func(topic string) reader

// Subscriber consumes topics as one consumer group. Every topic gets its own reader so a
// message waiting on an event of another topic never blocks that event. Offsets are
// committed only after the processor allows it, so an unprocessed message is redelivered
// after a restart.
type Subscriber struct {
	groupID   string
	newReader readerFactory
	logger    *zap.Logger

	mu      sync.Mutex
	readers []reader
}

// NewSubscriber creates a Subscriber for groupID on brokers.
func NewSubscriber(brokers []string, groupID string, logger *zap.Logger) *Subscriber {
	return newSubscriber(groupID, func(topic string) reader {
		return kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			GroupTopics: []string{topic},
			MinBytes:    1,
			MaxBytes:    10e6,
		})
	}, logger)
}

func newSubscriber(groupID string, factory readerFactory, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{groupID: groupID, newReader: factory, logger: logger}
}

// Subscribe implements messaging.Subscriber. One goroutine consumes per topic. It blocks
// until ctx is cancelled or the processor returns an error.
func (s *Subscriber) Subscribe(ctx context.Context, topics []string, p messaging.Processor) error {
	logger := s.logger.With(zap.String("group_id", s.groupID), zap.Strings("topics", topics))
	logger.Info("kafka subscriber started")

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		r := s.newReader(topic)
		s.track(r)
		g.Go(func() error {
			return s.consume(gctx, topic, r, p)
		})
	}

	err := g.Wait()
	logger.Info("kafka subscriber stopped")
	return err
}

func (s *Subscriber) consume(ctx context.Context, topic string, r reader, p messaging.Processor) error {
	logger := s.logger.With(zap.String("group_id", s.groupID), zap.String("topic", topic))

	for {
		km, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		msg := fromKafkaMessage(km)
		msgCtx := tracing.Extract(ctx, msg.Headers)

		commit, err := p.Process(msgCtx, msg)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("kafka subscriber stopped with message in flight",
					zap.Int("partition", km.Partition),
					zap.Int64("offset", km.Offset),
				)
				return nil
			}
			return err
		}
		if !commit {
			continue
		}

		if err := r.CommitMessages(ctx, km); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Close closes every reader opened by Subscribe.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, r := range s.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.readers = nil
	return errors.Join(errs...)
}

func (s *Subscriber) track(r reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readers = append(s.readers, r)
}
