package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
)

type recorder struct {
	mu   sync.Mutex
	msgs []messaging.Message
}

func (r *recorder) Process(ctx context.Context, msg messaging.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return true, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *recorder) first() messaging.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msgs[0]
}

type processorFunc func(ctx context.Context, msg messaging.Message) (bool, error)

func (f processorFunc) Process(ctx context.Context, msg messaging.Message) (bool, error) {
	return f(ctx, msg)
}

func TestBroker_FanOutAcrossGroups(t *testing.T) {
	b := NewBroker(nil)
	defer func() { assert.NoError(t, b.Close()) }()

	require.NoError(t, b.Declare("orders", "stock.available"))
	require.NoError(t, b.Declare("payments", "stock.available"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orders, payments := &recorder{}, &recorder{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, b.Subscriber("orders").Subscribe(ctx, []string{"stock.available"}, orders))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, b.Subscriber("payments").Subscribe(ctx, []string{"stock.available"}, payments))
	}()

	err := b.Publish(context.Background(), messaging.Message{
		ID:      "evt-1",
		Type:    "stock.available",
		Topic:   "stock.available",
		Key:     "order-1",
		Value:   []byte(`{"orderID":"order-1"}`),
		Headers: map[string]string{"custom": "value"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return orders.count() == 1 && payments.count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	got := orders.first()
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "stock.available", got.Type)
	assert.Equal(t, "stock.available", got.Topic)
	assert.Equal(t, "order-1", got.Key)
	assert.Equal(t, []byte(`{"orderID":"order-1"}`), got.Value)
	assert.Equal(t, "value", got.Headers["custom"])
	assert.NotContains(t, got.Headers, metadataKey)

	cancel()
	wg.Wait()
}

func TestBroker_UncommittedMessageIsRedelivered(t *testing.T) {
	b := NewBroker(nil)
	defer func() { assert.NoError(t, b.Close()) }()

	require.NoError(t, b.Declare("orders", "payment.done"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- b.Subscriber("orders").Subscribe(ctx, []string{"payment.done"},
			processorFunc(func(ctx context.Context, msg messaging.Message) (bool, error) {
				// The first delivery is not committed.
				return attempts.Add(1) > 1, nil
			}))
	}()

	require.NoError(t, b.Publish(context.Background(), messaging.Message{Topic: "payment.done", Key: "order-1"}))

	require.Eventually(t, func() bool {
		return attempts.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestBroker_ProcessorErrorStopsSubscriber(t *testing.T) {
	b := NewBroker(nil)
	defer func() { assert.NoError(t, b.Close()) }()

	require.NoError(t, b.Declare("orders", "shipment.created"))
	require.NoError(t, b.Publish(context.Background(), messaging.Message{Topic: "shipment.created"}))

	err := b.Subscriber("orders").Subscribe(context.Background(), []string{"shipment.created"},
		processorFunc(func(ctx context.Context, msg messaging.Message) (bool, error) {
			return false, errors.New("dead letter unavailable")
		}))

	assert.EqualError(t, err, "dead letter unavailable")
}

func TestBroker_Closed(t *testing.T) {
	b := NewBroker(nil)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Declare("orders", "order.created"), errBrokerClosed)
	assert.ErrorIs(t, b.Publish(context.Background(), messaging.Message{Topic: "order.created"}), errBrokerClosed)
	assert.ErrorIs(t,
		b.Subscriber("orders").Subscribe(context.Background(), []string{"order.created"}, &recorder{}),
		errBrokerClosed,
	)
}
