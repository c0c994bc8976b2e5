// Package usecase implements the shipments business logic: shipment creation for paid
// orders and the operator-driven delivery confirmation.
package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
)

// ShipmentCreator stores shipments and finds the shipment of an order.
type ShipmentCreator interface {
	Save(ctx context.Context, shipment *domain.Shipment) error
	ValidateID(ctx context.Context, orderID identifier.ID) (*domain.Shipment, error)
}

// ShipmentDeliverer locks a shipment and records its delivery.
type ShipmentDeliverer interface {
	FindByIDForUpdate(ctx context.Context, id identifier.ID) (*domain.Shipment, error)
	UpdateDelivery(ctx context.Context, shipment *domain.Shipment) error
}

// EventEmitter enqueues events in the outbox of the current transaction.
type EventEmitter interface {
	Emit(ctx context.Context, payloads ...events.Payload) error
}
