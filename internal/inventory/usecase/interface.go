// Package usecase implements the inventory business logic: the product catalog and the
// reservation of stock for new orders.
package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
)

// ProductSaver inserts products.
type ProductSaver interface {
	Save(ctx context.Context, product *domain.Product) error
}

// ProductLocker loads products and locks them for the current transaction.
type ProductLocker interface {
	FindForUpdate(ctx context.Context, ids []identifier.ID) ([]*domain.Product, error)
	UpdateStock(ctx context.Context, product *domain.Product) error
}

// ProductSearcher pages through the catalog.
type ProductSearcher interface {
	Search(ctx context.Context, page database.Page) (*database.PagedResult[*domain.Product], error)
}

// ReservationRepository stores one reservation per order.
type ReservationRepository interface {
	ValidateID(ctx context.Context, orderID identifier.ID) (*domain.Reservation, error)
	Save(ctx context.Context, reservation *domain.Reservation) error
}

// EventEmitter enqueues events in the outbox of the current transaction.
type EventEmitter interface {
	Emit(ctx context.Context, payloads ...events.Payload) error
}
