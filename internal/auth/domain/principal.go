// Package domain defines the authenticated principal and authentication errors.
package domain

import (
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Role is the kind of account a token was issued to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
)

// Model returns the identifier model of subjects with this role.
func (r Role) Model() (identifier.Model, bool) {
	switch r {
	case RoleCustomer:
		return identifier.Customer, true
	case RoleEmployee:
		return identifier.Employee, true
	default:
		return "", false
	}
}

// Principal is the verified identity behind a request.
type Principal struct {
	SubjectID identifier.ID
	Role      Role
}

// Authentication errors.
var (
	// ErrInvalidToken indicates a token that is malformed, expired or signed with another key.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

	// ErrInvalidCredentials indicates an unknown e-mail or a wrong password.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
)
