// Package dto provides data transfer objects for the inventory HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// CreateProductRequest represents the API request for adding a catalog entry
type CreateProductRequest struct {
	Name           string `json:"name"`
	PriceInCents   int64  `json:"priceInCents"`
	AvailableCount int    `json:"availableCount"`
}

// Validate checks the request shape.
func (r *CreateProductRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), appValidation.NotBlank),
		validation.Field(&r.PriceInCents, validation.Min(int64(1)).Error("price must be positive")),
		validation.Field(&r.AvailableCount, validation.Min(0).Error("available count must not be negative")),
	)
	return appValidation.WrapValidationError(err)
}

// ToCreateProductInput converts the request to a use case input
func (r *CreateProductRequest) ToCreateProductInput(employeeID identifier.ID) usecase.CreateProductInput {
	return usecase.CreateProductInput{
		EmployeeID:     employeeID,
		Name:           r.Name,
		PriceInCents:   r.PriceInCents,
		AvailableCount: r.AvailableCount,
	}
}
