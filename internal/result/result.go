// Package result provides a value-or-failure container used at use case boundaries.
//
// A Result holds exactly one of a success value or a failure error. Composition
// helpers short-circuit on the first failure and pass it through unchanged.
package result

import (
	"fmt"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
)

// Result is the outcome of an operation.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps an error. A nil error becomes an internal failure so the
// Result is never empty.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.Wrap(apperrors.ErrInternal, "failure without cause")
	}
	return Result[T]{err: err}
}

// From builds a Result from a (value, error) pair.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

// IsSuccess reports whether the Result carries a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure reports whether the Result carries an error.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Value returns the success value. It panics on a failure.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: Value called on failure: %v", r.err))
	}
	return r.value
}

// ValueOr returns the success value or fallback on a failure.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap returns the Result as a (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Then runs fn with the success value. A failure is returned unchanged.
func Then[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return fn(r.value)
}

// Map transforms the success value. A failure is returned unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Success(fn(r.value))
}

// MapErr transforms the failure, typically to translate a lower-level error
// into a domain error. A success is returned unchanged.
func MapErr[T any](r Result[T], fn func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Failure[T](fn(r.err))
}

// Match folds the Result into a single value.
func Match[T, U any](r Result[T], onSuccess func(T) U, onFailure func(error) U) U {
	if r.err != nil {
		return onFailure(r.err)
	}
	return onSuccess(r.value)
}
