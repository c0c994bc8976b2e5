// Package messaging defines the transport contract used between services: messages,
// handler outcomes, publishers and subscribers.
package messaging

import (
	"context"
	"errors"
	"time"
)

// Header names carried by every message.
const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
	HeaderDLQReason = "dlq-reason"
	// HeaderRedeliveries counts how many times a message was requeued after exhausting
	// its in-process retries.
	HeaderRedeliveries = "redeliveries"
)

// DeadLetterSuffix is appended to a topic name to form its dead-letter topic.
const DeadLetterSuffix = ".dlq"

// ErrRetryRequested is used when a handler asks for redelivery without a cause.
var ErrRetryRequested = errors.New("retry requested")

// Message is one event on the wire. Key is the aggregate identifier so that events for
// the same entity share a partition.
type Message struct {
	ID      string
	Type    string
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// DeadLetterTopic returns the dead-letter topic for topic.
func DeadLetterTopic(topic string) string {
	return topic + DeadLetterSuffix
}

// OutcomeKind tells the transport what to do with a handled message.
type OutcomeKind int

const (
	// OutcomeAck commits the message.
	OutcomeAck OutcomeKind = iota
	// OutcomeRetry redelivers the message.
	OutcomeRetry
	// OutcomeDrop commits the message without processing it further.
	OutcomeDrop
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAck:
		return "ack"
	case OutcomeRetry:
		return "retry"
	case OutcomeDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Outcome is the result of handling a message. Retryable and terminal failures are
// distinct values so the redelivery decision is visible to the caller.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// Ack acknowledges a successfully handled message.
func Ack() Outcome {
	return Outcome{Kind: OutcomeAck}
}

// Retry requests redelivery of the message because of err.
func Retry(err error) Outcome {
	if err == nil {
		err = ErrRetryRequested
	}
	return Outcome{Kind: OutcomeRetry, Err: err}
}

// Drop discards the message because of err. Redelivering it would fail the same way.
func Drop(err error) Outcome {
	return Outcome{Kind: OutcomeDrop, Err: err}
}

// Handler handles one message.
type Handler interface {
	Handle(ctx context.Context, msg Message) Outcome
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg Message) Outcome

// Handle calls f(ctx, msg).
func (f HandlerFunc) Handle(ctx context.Context, msg Message) Outcome {
	return f(ctx, msg)
}

// Processor decides whether a fetched message may be committed. A non-nil error stops
// the subscriber and leaves the message uncommitted.
type Processor interface {
	Process(ctx context.Context, msg Message) (commit bool, err error)
}

// Publisher publishes messages to msg.Topic.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// Subscriber delivers messages of the given topics to a Processor at least once until
// ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, topics []string, p Processor) error
	Close() error
}

// RetryPolicy bounds in-process redelivery of retryable failures. A message that
// exhausts MaxElapsedTime is requeued at the tail of its topic up to MaxRedeliveries
// times before it is dead-lettered.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRedeliveries int
}
