package dto

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
)

// BillingResponse represents a billing in API responses
type BillingResponse struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"orderID"`
	ExternalBillingID string     `json:"externalBillingID"`
	PaymentURL        string     `json:"paymentURL"`
	AmountInCents     int64      `json:"amountInCents"`
	Status            string     `json:"status"`
	PaymentMethod     string     `json:"paymentMethod,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// BillingListResponse is one page of billings
type BillingListResponse struct {
	Data       []BillingResponse `json:"data"`
	TotalCount int               `json:"totalCount"`
	Offset     int               `json:"offset"`
	Limit      int               `json:"limit"`
}

// MapBillingToResponse converts a domain billing to an API response
func MapBillingToResponse(b *domain.Billing) BillingResponse {
	return BillingResponse{
		ID:                b.ID.String(),
		OrderID:           b.OrderID.String(),
		ExternalBillingID: b.ExternalBillingID,
		PaymentURL:        b.PaymentURL,
		AmountInCents:     b.AmountInCents,
		Status:            string(b.Status),
		PaymentMethod:     b.PaymentMethod,
		PaidAt:            b.PaidAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// MapBillingsToListResponse converts a page of billings to an API response
func MapBillingsToListResponse(page *database.PagedResult[*domain.Billing]) BillingListResponse {
	data := make([]BillingResponse, 0, len(page.Items))
	for _, b := range page.Items {
		data = append(data, MapBillingToResponse(b))
	}
	return BillingListResponse{
		Data:       data,
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
}
