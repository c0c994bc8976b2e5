// Package domain defines the local copy of an account owned by the users service.
//
// Services that reference customers or employees keep a shadow record created lazily
// from customer.created and employee.created events. They never read the users tables.
package domain

import (
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Shadow is the local copy of a customer or employee.
type Shadow struct {
	ID        identifier.ID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotFound returns the error reported when no shadow exists for id.
func NotFound(id identifier.ID) error {
	return apperrors.Wrapf(apperrors.ErrNotFound, "%s %s not found", id.Model(), id)
}
