// Package domain defines the shipments created for paid orders.
package domain

import (
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Status is the delivery state of a shipment.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusDelivered Status = "DELIVERED"
)

// Rank orders statuses along the lifecycle. Unknown statuses rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusCreated:
		return 1
	case StatusDelivered:
		return 2
	default:
		return 0
	}
}

// Reached reports whether s is at or past target.
func (s Status) Reached(target Status) bool {
	return s.Rank() >= target.Rank()
}

// Shipment is the delivery of one paid order.
type Shipment struct {
	ID          identifier.ID
	OrderID     identifier.ID
	CustomerID  identifier.ID
	Status      Status
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreatedEvent returns the shipment.created fact for s.
func (s *Shipment) CreatedEvent() events.ShipmentCreatedPayload {
	return events.ShipmentCreatedPayload{
		OrderID:    s.OrderID.String(),
		CustomerID: s.CustomerID.String(),
		ShipmentID: s.ID.String(),
		CreatedAt:  s.CreatedAt,
	}
}

// DeliveredEvent returns the shipment.delivered fact for a delivered s.
func (s *Shipment) DeliveredEvent() events.ShipmentDeliveredPayload {
	var deliveredAt time.Time
	if s.DeliveredAt != nil {
		deliveredAt = *s.DeliveredAt
	}
	return events.ShipmentDeliveredPayload{
		OrderID:     s.OrderID.String(),
		CustomerID:  s.CustomerID.String(),
		ShipmentID:  s.ID.String(),
		DeliveredAt: deliveredAt,
	}
}

// MarkDelivered moves s to DELIVERED at t.
func (s *Shipment) MarkDelivered(t time.Time) {
	s.Status = StatusDelivered
	s.DeliveredAt = &t
	s.UpdatedAt = t
}

// Domain-specific errors for shipment operations.
var (
	// ErrShipmentNotFound indicates the shipment does not exist.
	ErrShipmentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "shipment not found")
)
