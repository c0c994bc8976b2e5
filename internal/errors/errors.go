// Package errors provides the failure taxonomy shared by every service.
// Use cases return these kinds; the HTTP layer maps them to status codes and the
// event router maps them to delivery outcomes.
package errors

import (
	"errors"
	"fmt"
)

// Standard failure kinds.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is malformed or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates the entity cannot accept the requested change.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated principal doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrRepository indicates a storage engine fault.
	ErrRepository = errors.New("repository failure")

	// ErrProvider indicates an external provider (payment gateway, e-mail) fault.
	ErrProvider = errors.New("provider failure")

	// ErrInternal indicates an unexpected failure inside the process.
	ErrInternal = errors.New("internal error")
)

// InvalidIDError reports an identifier that failed validation for a given model.
type InvalidIDError struct {
	Raw   string
	Model string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id %q", e.Model, e.Raw)
}

// Is classifies the error as invalid input.
func (e *InvalidIDError) Is(target error) bool {
	return target == ErrInvalidInput
}

// RepositoryError wraps a storage engine fault with the entity and operation that produced it.
type RepositoryError struct {
	Entity    string
	Operation string
	Cause     error
}

// NewRepositoryError creates a RepositoryError. Returns nil when cause is nil.
func NewRepositoryError(entity, operation string, cause error) error {
	if cause == nil {
		return nil
	}
	return &RepositoryError{Entity: entity, Operation: operation, Cause: cause}
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s %s: %v", e.Entity, e.Operation, e.Cause)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// Is classifies the error as a repository failure.
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepository
}

// ProviderError wraps a fault returned by an external provider.
type ProviderError struct {
	Provider  string
	Operation string
	Cause     error
}

// NewProviderError creates a ProviderError. Returns nil when cause is nil.
func NewProviderError(provider, operation string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Operation: operation, Cause: cause}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s %s: %v", e.Provider, e.Operation, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is classifies the error as a provider failure.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsDeterministic reports whether retrying the operation that produced err
// cannot change its outcome.
func IsDeterministic(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden):
		return true
	default:
		return false
	}
}
