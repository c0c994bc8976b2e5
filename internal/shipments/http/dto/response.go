// Package dto provides data transfer objects for the shipments HTTP layer.
package dto

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
)

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderID"`
	CustomerID  string     `json:"customerID"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MapShipmentToResponse converts a domain shipment to an API response
func MapShipmentToResponse(s *domain.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:          s.ID.String(),
		OrderID:     s.OrderID.String(),
		CustomerID:  s.CustomerID.String(),
		Status:      string(s.Status),
		DeliveredAt: s.DeliveredAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
