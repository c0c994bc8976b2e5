// Package domain defines the customer and employee accounts owned by the users service.
package domain

import (
	"time"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Kind discriminates customer accounts from employee accounts.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindEmployee Kind = "employee"
)

// Model returns the identifier model of accounts of this kind.
func (k Kind) Model() identifier.Model {
	if k == KindEmployee {
		return identifier.Employee
	}
	return identifier.Customer
}

// Role returns the token role granted to accounts of this kind.
func (k Kind) Role() authDomain.Role {
	if k == KindEmployee {
		return authDomain.RoleEmployee
	}
	return authDomain.RoleCustomer
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCustomer || k == KindEmployee
}

// Account represents a customer or employee in the system
type Account struct {
	ID           identifier.ID
	Kind         Kind
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreatedEvent returns the fact announcing the account to the other services.
func (a *Account) CreatedEvent() events.Payload {
	if a.Kind == KindEmployee {
		return events.EmployeeCreatedPayload{
			EmployeeID: a.ID.String(),
			Name:       a.Name,
			Email:      a.Email,
			CreatedAt:  a.CreatedAt,
		}
	}
	return events.CustomerCreatedPayload{
		CustomerID: a.ID.String(),
		Name:       a.Name,
		Email:      a.Email,
		CreatedAt:  a.CreatedAt,
	}
}

// Domain-specific errors for account operations.
var (
	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")

	// ErrAccountAlreadyExists indicates an account of the same kind already uses the email.
	ErrAccountAlreadyExists = errors.Wrap(errors.ErrConflict, "account already exists")
)
