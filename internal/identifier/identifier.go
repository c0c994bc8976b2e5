// Package identifier validates and mints the typed identifiers every entity uses.
//
// Identifiers are UUIDs tagged with the model they belong to. They are
// re-validated at each boundary: when an event payload reaches a use case and
// when a row is read back from storage.
package identifier

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

// Model tags the entity kind an identifier belongs to.
type Model string

const (
	Customer     Model = "customer"
	Employee     Model = "employee"
	Product      Model = "product"
	Order        Model = "order"
	Billing      Model = "billing"
	Shipment     Model = "shipment"
	Notification Model = "notification"
	Event        Model = "event"
)

// canonicalLength is the length of the hyphenated UUID text form.
const canonicalLength = 36

// ID is a validated identifier bound to a model.
type ID struct {
	value uuid.UUID
	model Model
}

// New mints a time-ordered identifier for an entity created by its owning service.
func New(model Model) ID {
	return ID{value: uuid.Must(uuid.NewV7()), model: model}
}

// Parse validates raw as an identifier of the given model.
func Parse(raw string, model Model) (ID, error) {
	if len(raw) != canonicalLength {
		return ID{}, &apperrors.InvalidIDError{Raw: raw, Model: string(model)}
	}
	value, err := uuid.Parse(raw)
	if err != nil || value == uuid.Nil {
		return ID{}, &apperrors.InvalidIDError{Raw: raw, Model: string(model)}
	}
	return ID{value: value, model: model}, nil
}

// Validate is Parse expressed as a Result.
func Validate(raw string, model Model) result.Result[ID] {
	return result.From(Parse(raw, model))
}

// MustParse is Parse that panics on an invalid identifier. Intended for tests and constants.
func MustParse(raw string, model Model) ID {
	id, err := Parse(raw, model)
	if err != nil {
		panic(err)
	}
	return id
}

// FromUUID binds an existing UUID to a model.
func FromUUID(value uuid.UUID, model Model) ID {
	return ID{value: value, model: model}
}

func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.value.String()
}

// Model returns the model the identifier belongs to.
func (id ID) Model() Model {
	return id.model
}

// UUID returns the underlying UUID.
func (id ID) UUID() uuid.UUID {
	return id.value
}

// IsZero reports whether the identifier was never set.
func (id ID) IsZero() bool {
	return id.value == uuid.Nil
}

// Value implements driver.Valuer so identifiers can be passed as query arguments.
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return id.value.String(), nil
}

// MarshalJSON encodes the identifier as its string form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}
