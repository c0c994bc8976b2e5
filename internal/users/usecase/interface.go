// Package usecase implements the users business logic: registration, sessions and token
// verification for customers and employees.
package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
)

// AccountSaver inserts accounts.
type AccountSaver interface {
	Save(ctx context.Context, account *domain.Account) error
}

// AccountByEmailFinder looks accounts up by e-mail.
type AccountByEmailFinder interface {
	FindByEmail(ctx context.Context, kind domain.Kind, email string) (*domain.Account, error)
}

// AccountByIDFinder looks accounts up by identifier.
type AccountByIDFinder interface {
	FindByID(ctx context.Context, kind domain.Kind, id identifier.ID) (*domain.Account, error)
}

// EventEmitter enqueues events in the outbox of the current transaction.
type EventEmitter interface {
	Emit(ctx context.Context, payloads ...events.Payload) error
}
