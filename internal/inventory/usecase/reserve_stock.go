package usecase

import (
	"context"
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

// requestedLine is a validated order line.
type requestedLine struct {
	productID identifier.ID
	quantity  int
}

// ReserveStock holds stock for a new order and announces it with stock.available.
type ReserveStock struct {
	executor     *operation.Executor
	txManager    database.TxManager
	products     ProductLocker
	reservations ReservationRepository
	emitter      EventEmitter
	now          func() time.Time
}

// NewReserveStock creates a ReserveStock.
func NewReserveStock(
	executor *operation.Executor,
	txManager database.TxManager,
	products ProductLocker,
	reservations ReservationRepository,
	emitter EventEmitter,
) *ReserveStock {
	return &ReserveStock{
		executor:     executor,
		txManager:    txManager,
		products:     products,
		reservations: reservations,
		emitter:      emitter,
		now:          time.Now,
	}
}

// Execute reserves every line of the order or none of them. A redelivered order returns
// the existing reservation without emitting again. Missing products and insufficient
// stock fail with ErrInvalidState and emit nothing.
func (uc *ReserveStock) Execute(ctx context.Context, in events.OrderCreatedPayload) result.Result[*domain.Reservation] {
	return operation.Execute(ctx, uc.executor, "reserve_stock", func(ctx context.Context) (*domain.Reservation, error) {
		orderID, err := identifier.Parse(in.OrderID, identifier.Order)
		if err != nil {
			return nil, err
		}
		customerID, err := identifier.Parse(in.CustomerID, identifier.Customer)
		if err != nil {
			return nil, err
		}
		lines, err := mergeLines(in.Products)
		if err != nil {
			return nil, err
		}

		var reservation *domain.Reservation
		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			existing, err := uc.reservations.ValidateID(ctx, orderID)
			if err != nil {
				return err
			}
			if existing != nil {
				reservation = existing
				return nil
			}

			reserved, err := uc.reserve(ctx, lines)
			if err != nil {
				return err
			}

			now := uc.now().UTC()
			reservation = &domain.Reservation{
				OrderID:            orderID,
				CustomerID:         customerID,
				Lines:              reserved,
				TotalAmountInCents: domain.Total(reserved),
				CreatedAt:          now,
			}
			if err := uc.reservations.Save(ctx, reservation); err != nil {
				return err
			}

			return uc.emitter.Emit(ctx, stockAvailable(reservation, in.CreatedAt, now))
		})
		if err != nil {
			return nil, err
		}
		return reservation, nil
	})
}

// reserve locks the products of lines and moves the requested units.
func (uc *ReserveStock) reserve(ctx context.Context, lines []requestedLine) ([]domain.ReservedLine, error) {
	ids := make([]identifier.ID, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}

	products, err := uc.products.FindForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[identifier.ID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := uc.now().UTC()
	reserved := make([]domain.ReservedLine, 0, len(lines))
	for _, l := range lines {
		product, ok := byID[l.productID]
		if !ok {
			return nil, apperrors.Wrapf(domain.ErrUnknownProduct, "product %s", l.productID)
		}
		if err := product.Reserve(l.quantity); err != nil {
			return nil, err
		}
		product.UpdatedAt = now
		if err := uc.products.UpdateStock(ctx, product); err != nil {
			return nil, err
		}
		reserved = append(reserved, domain.ReservedLine{
			ProductID:    product.ID,
			Quantity:     l.quantity,
			PriceInCents: product.PriceInCents,
		})
	}
	return reserved, nil
}

// mergeLines validates the order lines and sums quantities of repeated products,
// keeping the order of first appearance.
func mergeLines(products []events.ProductLine) ([]requestedLine, error) {
	if len(products) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "order has no products")
	}

	index := make(map[identifier.ID]int, len(products))
	lines := make([]requestedLine, 0, len(products))
	for _, p := range products {
		id, err := identifier.Parse(p.ID, identifier.Product)
		if err != nil {
			return nil, err
		}
		if p.Quantity <= 0 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "product %s quantity must be positive", id)
		}
		if i, ok := index[id]; ok {
			lines[i].quantity += p.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, requestedLine{productID: id, quantity: p.Quantity})
	}
	return lines, nil
}

func stockAvailable(r *domain.Reservation, orderCreatedAt, now time.Time) events.StockAvailablePayload {
	products := make([]events.PricedProductLine, len(r.Lines))
	for i, l := range r.Lines {
		products[i] = events.PricedProductLine{ID: l.ProductID.String(), Quantity: l.Quantity, PriceInCents: l.PriceInCents}
	}
	return events.StockAvailablePayload{
		OrderID:            r.OrderID.String(),
		CustomerID:         r.CustomerID.String(),
		Products:           products,
		TotalAmountInCents: r.TotalAmountInCents,
		CreatedAt:          orderCreatedAt,
		UpdatedAt:          now,
	}
}

// ReserveStockRoute binds order.created to uc.
func ReserveStockRoute(uc *ReserveStock) events.Route {
	return events.Bind("reserve_stock", events.Critical, func(ctx context.Context, p events.OrderCreatedPayload) error {
		return uc.Execute(ctx, p).Err()
	})
}
