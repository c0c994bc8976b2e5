package dto

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
)

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ProductID    string `json:"productID"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"priceInCents"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 string              `json:"id"`
	CustomerID         string              `json:"customerID"`
	Status             string              `json:"status"`
	TotalAmountInCents int64               `json:"totalAmountInCents"`
	Items              []OrderItemResponse `json:"items"`
	PaymentMethod      string              `json:"paymentMethod,omitempty"`
	ShipmentID         string              `json:"shipmentID,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	TotalCount int             `json:"totalCount"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
}

// MapOrderToResponse converts a domain order to an API response
func MapOrderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:    item.ProductID.String(),
			Quantity:     item.Quantity,
			PriceInCents: item.PriceInCents,
		}
	}
	return OrderResponse{
		ID:                 o.ID.String(),
		CustomerID:         o.CustomerID.String(),
		Status:             string(o.Status),
		TotalAmountInCents: o.TotalAmountInCents,
		Items:              items,
		PaymentMethod:      o.PaymentMethod,
		ShipmentID:         o.ShipmentID.String(),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// MapOrdersToListResponse converts a page of orders to an API response
func MapOrdersToListResponse(page *database.PagedResult[*domain.Order]) OrderListResponse {
	data := make([]OrderResponse, 0, len(page.Items))
	for _, o := range page.Items {
		data = append(data, MapOrderToResponse(o))
	}
	return OrderListResponse{
		Data:       data,
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
}
