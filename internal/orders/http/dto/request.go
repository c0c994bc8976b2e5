// Package dto provides data transfer objects for the orders HTTP layer.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID string `json:"productID"`
	Quantity  int    `json:"quantity"`
}

// Validate checks the line shape.
func (r OrderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required.Error("productID is required"),
			appValidation.Identifier(identifier.Product)),
		validation.Field(&r.Quantity, validation.Min(1).Error("quantity must be positive")),
	)
}

// CreateOrderRequest represents the API request for placing an order
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// Validate checks the request shape.
func (r *CreateOrderRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Items, validation.Required.Error("at least one item is required")),
	)
	return appValidation.WrapValidationError(err)
}

// ToCreateOrderInput converts the request to a use case input
func (r *CreateOrderRequest) ToCreateOrderInput(customerID identifier.ID) usecase.CreateOrderInput {
	items := make([]usecase.ItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = usecase.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return usecase.CreateOrderInput{CustomerID: customerID, Items: items}
}

// SearchOrdersQuery holds the query string filters of an order search
type SearchOrdersQuery struct {
	Status        string     `form:"status"`
	CreatedFrom   *time.Time `form:"createdFrom"   time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedTo     *time.Time `form:"createdTo"     time_format:"2006-01-02T15:04:05Z07:00"`
	MinAmount     *int64     `form:"minAmount"`
	MaxAmount     *int64     `form:"maxAmount"`
	PaymentMethod string     `form:"paymentMethod"`
}

// ToSearchOrdersInput converts the query to a use case input
func (q *SearchOrdersQuery) ToSearchOrdersInput(customerID identifier.ID, page database.Page) usecase.SearchOrdersInput {
	return usecase.SearchOrdersInput{
		CustomerID: customerID,
		Filters: domain.Filters{
			Status:        domain.Status(q.Status),
			CreatedFrom:   q.CreatedFrom,
			CreatedTo:     q.CreatedTo,
			MinAmount:     q.MinAmount,
			MaxAmount:     q.MaxAmount,
			PaymentMethod: q.PaymentMethod,
		},
		Page: page,
	}
}
