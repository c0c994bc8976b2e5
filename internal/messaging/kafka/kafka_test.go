package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeWriter struct {
	written []kafkago.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafkago.Message
	committed []kafkago.Message
	fetchErr  error
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if r.fetchErr != nil {
		err := r.fetchErr
		r.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	offsets := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		offsets = append(offsets, m.Offset)
	}
	return offsets
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []messaging.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msgs ...messaging.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, msgs...)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type processorFunc func(ctx context.Context, msg messaging.Message) (bool, error)

func (f processorFunc) Process(ctx context.Context, msg messaging.Message) (bool, error) {
	return f(ctx, msg)
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		w := &fakeWriter{}
		p := newPublisher(w, nil)

		err := p.Publish(context.Background(), messaging.Message{
			ID:      "evt-1",
			Type:    "order.created",
			Topic:   "order.created",
			Key:     "order-1",
			Value:   []byte(`{"orderID":"order-1"}`),
			Headers: map[string]string{"custom": "value"},
		})

		require.NoError(t, err)
		require.Len(t, w.written, 1)

		got := w.written[0]
		assert.Equal(t, "order.created", got.Topic)
		assert.Equal(t, []byte("order-1"), got.Key)

		decoded := fromKafkaMessage(got)
		assert.Equal(t, "evt-1", decoded.ID)
		assert.Equal(t, "order.created", decoded.Type)
		assert.Equal(t, "value", decoded.Headers["custom"])
		assert.Equal(t, "order-1", decoded.Key)
	})

	t.Run("Success_NoMessages", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("must not be called")}
		p := newPublisher(w, nil)

		assert.NoError(t, p.Publish(context.Background()))
	})

	t.Run("Error_WriterFails", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("leader not available")}
		p := newPublisher(w, nil)

		err := p.Publish(context.Background(), messaging.Message{Topic: "order.created"})
		assert.EqualError(t, err, "leader not available")
	})

	t.Run("Close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newPublisher(w, nil).Close())
		assert.True(t, w.closed)
	})
}

func TestSubscriber_Subscribe(t *testing.T) {
	t.Run("Success_CommitsAfterProcessing", func(t *testing.T) {
		r := &fakeReader{pending: []kafkago.Message{
			{Topic: "stock.available", Offset: 1, Key: []byte("order-1"), Headers: []kafkago.Header{
				{Key: messaging.HeaderEventType, Value: []byte("stock.available")},
			}},
			{Topic: "stock.available", Offset: 2, Key: []byte("order-2")},
		}}
		s := newSubscriber("starsoft-orders", func(topic string) reader { return r }, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			mu   sync.Mutex
			seen []messaging.Message
		)
		done := make(chan error, 1)
		go func() {
			done <- s.Subscribe(ctx, []string{"stock.available"},
				processorFunc(func(ctx context.Context, msg messaging.Message) (bool, error) {
					mu.Lock()
					defer mu.Unlock()
					seen = append(seen, msg)
					return true, nil
				}))
		}()

		require.Eventually(t, func() bool {
			return len(r.committedOffsets()) == 2
		}, time.Second, 5*time.Millisecond)

		cancel()
		require.NoError(t, <-done)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, seen, 2)
		assert.Equal(t, "stock.available", seen[0].Type)
		assert.Equal(t, "order-1", seen[0].Key)
		assert.Equal(t, []int64{1, 2}, r.committedOffsets())

		require.NoError(t, s.Close())
		assert.True(t, r.closed)
	})

	t.Run("Error_ProcessorFailureStopsWithoutCommit", func(t *testing.T) {
		r := &fakeReader{pending: []kafkago.Message{{Topic: "payment.done", Offset: 7}}}
		s := newSubscriber("starsoft-orders", func(topic string) reader { return r }, nil)

		err := s.Subscribe(context.Background(), []string{"payment.done"},
			processorFunc(func(ctx context.Context, msg messaging.Message) (bool, error) {
				return false, errors.New("dead letter unavailable")
			}))

		assert.EqualError(t, err, "dead letter unavailable")
		assert.Empty(t, r.committedOffsets())
	})

	t.Run("Error_FetchFails", func(t *testing.T) {
		r := &fakeReader{fetchErr: errors.New("group coordinator unavailable")}
		s := newSubscriber("starsoft-orders", func(topic string) reader { return r }, nil)

		err := s.Subscribe(context.Background(), []string{"payment.done"},
			processorFunc(func(ctx context.Context, msg messaging.Message) (bool, error) {
				return true, nil
			}))

		assert.EqualError(t, err, "group coordinator unavailable")
	})

	t.Run("Success_BlockedTopicDoesNotStarveOthers", func(t *testing.T) {
		readers := map[string]*fakeReader{
			"stock.available": {pending: []kafkago.Message{{
				Topic:   "stock.available",
				Offset:  3,
				Key:     []byte("order-1"),
				Headers: []kafkago.Header{{Key: messaging.HeaderEventType, Value: []byte("stock.available")}},
			}}},
			"customer.created": {pending: []kafkago.Message{{
				Topic:   "customer.created",
				Offset:  5,
				Key:     []byte("customer-1"),
				Headers: []kafkago.Header{{Key: messaging.HeaderEventType, Value: []byte("customer.created")}},
			}}},
		}
		var factoryMu sync.Mutex
		s := newSubscriber("starsoft-payments", func(topic string) reader {
			factoryMu.Lock()
			defer factoryMu.Unlock()
			return readers[topic]
		}, nil)

		// stock.available needs the customer shadow written by customer.created.
		var shadowCreated atomic.Bool
		handler := messaging.HandlerFunc(func(ctx context.Context, msg messaging.Message) messaging.Outcome {
			switch msg.Type {
			case "customer.created":
				shadowCreated.Store(true)
				return messaging.Ack()
			case "stock.available":
				if !shadowCreated.Load() {
					return messaging.Retry(errors.New("customer not found"))
				}
				return messaging.Ack()
			default:
				return messaging.Drop(nil)
			}
		})
		dlq := &recordingPublisher{}
		dispatcher := messaging.NewDispatcher("payments", handler, messaging.RetryPolicy{
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			MaxElapsedTime:  300 * time.Millisecond,
		}, dlq, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- s.Subscribe(ctx, []string{"stock.available", "customer.created"}, dispatcher)
		}()

		require.Eventually(t, func() bool {
			return len(readers["stock.available"].committedOffsets()) == 1 &&
				len(readers["customer.created"].committedOffsets()) == 1
		}, 2*time.Second, 5*time.Millisecond)

		cancel()
		require.NoError(t, <-done)

		assert.True(t, shadowCreated.Load())
		assert.Equal(t, []int64{3}, readers["stock.available"].committedOffsets())
		assert.Zero(t, dlq.count())

		require.NoError(t, s.Close())
		assert.True(t, readers["stock.available"].closed)
		assert.True(t, readers["customer.created"].closed)
	})
}
