// Package operation defines the use case contract and the executor that wraps
// every use case run with timing, tracing, metrics and panic recovery.
package operation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

const tracerName = "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"

// UseCase is a single-purpose, stateless operation with one entry point.
type UseCase[In, Out any] interface {
	Execute(ctx context.Context, in In) result.Result[Out]
}

// State is the lifecycle of one use case run.
type State int

const (
	StateCreated State = iota
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Executor carries the observability dependencies shared by the use cases of one domain.
type Executor struct {
	domain  string
	logger  *zap.Logger
	metrics metrics.BusinessMetrics
	tracer  trace.Tracer
}

// NewExecutor creates an Executor for domain (e.g., "orders").
func NewExecutor(domain string, logger *zap.Logger, businessMetrics metrics.BusinessMetrics) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Executor{
		domain:  domain,
		logger:  logger.With(zap.String("domain", domain)),
		metrics: businessMetrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// Logger returns the domain-scoped logger.
func (e *Executor) Logger() *zap.Logger {
	return e.logger
}

// Execute runs body as the named operation and returns exactly one Result.
// A panic inside body becomes an internal failure.
func Execute[T any](
	ctx context.Context,
	e *Executor,
	name string,
	body func(ctx context.Context) (T, error),
) (res result.Result[T]) {
	ctx, span := e.tracer.Start(ctx, e.domain+"."+name,
		trace.WithAttributes(
			attribute.String("operation.domain", e.domain),
			attribute.String("operation.name", name),
		),
	)
	defer span.End()

	state := StateExecuting
	start := time.Now()
	e.logger.Debug("operation started", zap.String("operation", name), zap.Stringer("state", state))

	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("operation panicked",
				zap.String("operation", name),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			res = result.Failure[T](fmt.Errorf("%w: panic in %s: %v", apperrors.ErrInternal, name, p))
		}

		duration := time.Since(start)
		status := "success"
		state = StateSucceeded
		if res.IsFailure() {
			status = "error"
			state = StateFailed
			span.RecordError(res.Err())
			span.SetStatus(codes.Error, res.Err().Error())
		}

		e.metrics.RecordOperation(ctx, e.domain, name, status)
		e.metrics.RecordDuration(ctx, e.domain, name, duration, status)

		fields := []zap.Field{
			zap.String("operation", name),
			zap.Stringer("state", state),
			zap.Duration("duration", duration),
		}
		if res.IsFailure() {
			e.logger.Info("operation finished", append(fields, zap.Error(res.Err()))...)
			return
		}
		e.logger.Debug("operation finished", fields...)
	}()

	return result.From(body(ctx))
}
