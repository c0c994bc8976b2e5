// Package usecase implements the orders business logic: order placement, the
// forward-only status lifecycle driven by events, and customer queries.
package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
)

// OrderSaver inserts orders.
type OrderSaver interface {
	Save(ctx context.Context, order *domain.Order) error
}

// OrderFinder loads a live order.
type OrderFinder interface {
	FindByID(ctx context.Context, id identifier.ID) (*domain.Order, error)
}

// OrderTransitioner locks an order and writes a status transition.
type OrderTransitioner interface {
	FindByIDForUpdate(ctx context.Context, id identifier.ID) (*domain.Order, error)
	Update(ctx context.Context, t domain.Transition) error
}

// OrderSearcher pages through the orders of a customer.
type OrderSearcher interface {
	Search(
		ctx context.Context,
		customerID identifier.ID,
		filters domain.Filters,
		page database.Page,
	) (*database.PagedResult[*domain.Order], error)
}

// EventEmitter enqueues events in the outbox of the current transaction.
type EventEmitter interface {
	Emit(ctx context.Context, payloads ...events.Payload) error
}
