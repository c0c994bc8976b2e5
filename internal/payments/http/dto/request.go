// Package dto provides data transfer objects for the payments HTTP layer.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// PaymentWebhookRequest is the payment confirmation posted by the gateway
type PaymentWebhookRequest struct {
	ExternalBillingID string `json:"externalBillingID"`
	PaymentMethod     string `json:"paymentMethod"`
}

// Validate checks the request shape.
func (r *PaymentWebhookRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ExternalBillingID, validation.Required.Error("externalBillingID is required")),
		validation.Field(&r.PaymentMethod, validation.Required.Error("paymentMethod is required")),
	)
	return appValidation.WrapValidationError(err)
}

// ToConfirmPaymentInput converts the request to a use case input
func (r *PaymentWebhookRequest) ToConfirmPaymentInput() usecase.ConfirmPaymentInput {
	return usecase.ConfirmPaymentInput{ExternalBillingID: r.ExternalBillingID, PaymentMethod: r.PaymentMethod}
}

// SearchBillingsQuery holds the query string filters of a billing search
type SearchBillingsQuery struct {
	Status        string     `form:"status"`
	CreatedFrom   *time.Time `form:"createdFrom"   time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedTo     *time.Time `form:"createdTo"     time_format:"2006-01-02T15:04:05Z07:00"`
	MinAmount     *int64     `form:"minAmount"`
	MaxAmount     *int64     `form:"maxAmount"`
	PaymentMethod string     `form:"paymentMethod"`
}

// ToSearchBillingsInput converts the query to a use case input
func (q *SearchBillingsQuery) ToSearchBillingsInput(
	customerID identifier.ID,
	page database.Page,
) usecase.SearchBillingsInput {
	return usecase.SearchBillingsInput{
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
