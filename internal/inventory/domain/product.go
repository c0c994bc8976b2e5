// Package domain defines the product catalog and stock reservations owned by the
// inventory service.
package domain

import (
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Product is a catalog entry with its stock counters. Reserved units move from
// AvailableCount to UnavailableCount.
type Product struct {
	ID               identifier.ID
	Name             string
	PriceInCents     int64
	AvailableCount   int
	UnavailableCount int
	CreatedBy        identifier.ID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Reserve moves quantity units from available to unavailable.
func (p *Product) Reserve(quantity int) error {
	if quantity > p.AvailableCount {
		return apperrors.Wrapf(ErrInsufficientStock, "product %s has %d available, %d requested",
			p.ID, p.AvailableCount, quantity)
	}
	p.AvailableCount -= quantity
	p.UnavailableCount += quantity
	return nil
}

// ReservedLine is one product line of a reservation, priced from the catalog at
// reservation time.
type ReservedLine struct {
	ProductID    identifier.ID
	Quantity     int
	PriceInCents int64
}

// Reservation records the stock held for one order. There is at most one per order.
type Reservation struct {
	OrderID            identifier.ID
	CustomerID         identifier.ID
	Lines              []ReservedLine
	TotalAmountInCents int64
	CreatedAt          time.Time
}

// Total sums quantity times price over lines.
func Total(lines []ReservedLine) int64 {
	var total int64
	for _, l := range lines {
		total += int64(l.Quantity) * l.PriceInCents
	}
	return total
}

// Domain-specific errors for inventory operations.
var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = apperrors.Wrap(apperrors.ErrNotFound, "product not found")

	// ErrUnknownProduct indicates an order line references a product missing from the catalog.
	ErrUnknownProduct = apperrors.Wrap(apperrors.ErrInvalidState, "unknown product")

	// ErrInsufficientStock indicates an order asks for more units than are available.
	ErrInsufficientStock = apperrors.Wrap(apperrors.ErrInvalidState, "insufficient stock")
)
