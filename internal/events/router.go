package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
)

// Criticality decides what happens to a message whose handler failed.
type Criticality int

const (
	// Critical failures are redelivered unless they are deterministic.
	Critical Criticality = iota
	// BestEffort failures are logged and dropped.
	BestEffort
)

func (c Criticality) String() string {
	if c == BestEffort {
		return "best_effort"
	}
	return "critical"
}

// Route binds one event type to its handler.
type Route struct {
	Type        Type
	Name        string
	Criticality Criticality
	handle      func(ctx context.Context, raw []byte) error
}

// Bind creates a Route for the event type of P. The payload is decoded before fn runs.
func Bind[P Payload](name string, criticality Criticality, fn func(ctx context.Context, payload P) error) Route {
	var zero P
	route := Route{Type: zero.EventType(), Name: name, Criticality: criticality}
	if fn == nil {
		return route
	}
	route.handle = func(ctx context.Context, raw []byte) error {
		var payload P
		if err := json.Unmarshal(raw, &payload); err != nil {
			return &DecodeError{Type: route.Type, Cause: err}
		}
		return fn(ctx, payload)
	}
	return route
}

// DecodeError reports a payload that does not match its event type.
type DecodeError struct {
	Type  Type
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Type, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Router is the static event type to handler table of one service. It implements
// messaging.Handler.
type Router struct {
	routes map[Type]Route
	logger *zap.Logger
}

// NewRouter validates routes and builds the table. Unknown types, duplicate types and
// routes without a handler are rejected.
func NewRouter(logger *zap.Logger, routes ...Route) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := make(map[Type]Route, len(routes))
	for _, route := range routes {
		if !Known(route.Type) {
			return nil, fmt.Errorf("route %q: unknown event type %q", route.Name, route.Type)
		}
		if route.handle == nil {
			return nil, fmt.Errorf("route %q: nil handler", route.Name)
		}
		if existing, ok := table[route.Type]; ok {
			return nil, fmt.Errorf(
				"route %q: event type %q already handled by %q",
				route.Name, route.Type, existing.Name,
			)
		}
		table[route.Type] = route
	}

	return &Router{routes: table, logger: logger}, nil
}

// Topics returns the topics the router consumes, sorted.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.routes))
	for t := range r.routes {
		topics = append(topics, t.String())
	}
	sort.Strings(topics)
	return topics
}

// Handle implements messaging.Handler.
func (r *Router) Handle(ctx context.Context, msg messaging.Message) messaging.Outcome {
	eventType := Type(msg.Type)
	if eventType == "" {
		eventType = Type(msg.Topic)
	}

	route, ok := r.routes[eventType]
	if !ok {
		r.logger.Warn("no route for event", zap.String("event_type", eventType.String()))
		return messaging.Drop(fmt.Errorf("no route for event type %q", eventType))
	}

	logger := r.logger.With(
		zap.String("event_type", eventType.String()),
		zap.String("handler", route.Name),
		zap.String("key", msg.Key),
	)

	err := route.handle(ctx, msg.Value)
	if err == nil {
		return messaging.Ack()
	}

	var decodeErr *DecodeError
	switch {
	case apperrors.As(err, &decodeErr):
		logger.Error("undecodable event payload dropped", zap.Error(err))
		return messaging.Drop(err)
	case route.Criticality == BestEffort:
		logger.Warn("best-effort handler failed", zap.Error(err))
		return messaging.Drop(err)
	case apperrors.IsDeterministic(err):
		logger.Warn("handler failed permanently", zap.Error(err))
		return messaging.Drop(err)
	default:
		logger.Info("handler failed, message will be redelivered", zap.Error(err))
		return messaging.Retry(err)
	}
}
