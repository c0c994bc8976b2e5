package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

// transitioner moves orders forward along the status lifecycle. An order that already
// reached the target status keeps it, so redelivered events are no-ops. Columns owned by
// an overtaken transition are still filled in when the order lacks them.
type transitioner struct {
	executor  *operation.Executor
	txManager database.TxManager
	orders    OrderTransitioner
	now       func() time.Time
}

func newTransitioner(
	executor *operation.Executor,
	txManager database.TxManager,
	orders OrderTransitioner,
) transitioner {
	return transitioner{executor: executor, txManager: txManager, orders: orders, now: time.Now}
}

// advance locks the order and applies the transition built by fill when the order has
// not reached target yet. Otherwise only the missing columns of that transition are
// written. A missing order fails with ErrNotFound so the event is redelivered once the
// order exists.
func (t transitioner) advance(
	ctx context.Context,
	rawOrderID string,
	target domain.Status,
	fill func(tr *domain.Transition),
) (*domain.Order, error) {
	orderID, err := identifier.Parse(rawOrderID, identifier.Order)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := t.orders.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		order = current

		transition := domain.Transition{OrderID: orderID, Status: target, UpdatedAt: t.now().UTC()}
		if fill != nil {
			fill(&transition)
		}

		if current.Status.Reached(target) {
			backfill, ok := current.Backfill(transition)
			t.executor.Logger().Debug("order already transitioned",
				zap.Stringer("order_id", orderID),
				zap.String("status", string(current.Status)),
				zap.String("target", string(target)),
				zap.Bool("backfill", ok),
			)
			if !ok {
				return nil
			}
			transition = backfill
		}

		if err := t.orders.Update(ctx, transition); err != nil {
			return err
		}
		current.Apply(transition)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmOrderStock records that inventory reserved and priced the order. The order
// becomes AWAITING_PAYMENT with its priced items and total.
type ConfirmOrderStock struct {
	transitioner
}

// NewConfirmOrderStock creates a ConfirmOrderStock.
func NewConfirmOrderStock(
	executor *operation.Executor,
	txManager database.TxManager,
	orders OrderTransitioner,
) *ConfirmOrderStock {
	return &ConfirmOrderStock{transitioner: newTransitioner(executor, txManager, orders)}
}

// Execute applies a stock.available fact.
func (uc *ConfirmOrderStock) Execute(ctx context.Context, in events.StockAvailablePayload) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "confirm_order_stock", func(ctx context.Context) (*domain.Order, error) {
		items, err := pricedItems(in.Products)
		if err != nil {
			return nil, err
		}
		if in.TotalAmountInCents < 0 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "total amount must not be negative")
		}

		total := in.TotalAmountInCents
		return uc.advance(ctx, in.OrderID, domain.StatusAwaitingPayment, func(tr *domain.Transition) {
			tr.TotalAmountInCents = &total
			tr.Items = items
		})
	})
}

func pricedItems(products []events.PricedProductLine) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(products))
	for _, p := range products {
		productID, err := identifier.Parse(p.ID, identifier.Product)
		if err != nil {
			return nil, err
		}
		if p.Quantity <= 0 || p.PriceInCents < 0 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "product %s has an invalid quantity or price", productID)
		}
		items = append(items, domain.Item{ProductID: productID, Quantity: p.Quantity, PriceInCents: p.PriceInCents})
	}
	return items, nil
}

// MarkOrderPaid records the payment confirmed by the gateway.
type MarkOrderPaid struct {
	transitioner
}

// NewMarkOrderPaid creates a MarkOrderPaid.
func NewMarkOrderPaid(
	executor *operation.Executor,
	txManager database.TxManager,
	orders OrderTransitioner,
) *MarkOrderPaid {
	return &MarkOrderPaid{transitioner: newTransitioner(executor, txManager, orders)}
}

// Execute applies a payment.done fact.
func (uc *MarkOrderPaid) Execute(ctx context.Context, in events.PaymentDonePayload) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "mark_order_paid", func(ctx context.Context) (*domain.Order, error) {
		method := in.PaymentMethod
		return uc.advance(ctx, in.OrderID, domain.StatusPaid, func(tr *domain.Transition) {
			if method != "" {
				tr.PaymentMethod = &method
			}
		})
	})
}

// MarkOrderShipped records the shipment created for a paid order.
type MarkOrderShipped struct {
	transitioner
}

// NewMarkOrderShipped creates a MarkOrderShipped.
func NewMarkOrderShipped(
	executor *operation.Executor,
	txManager database.TxManager,
	orders OrderTransitioner,
) *MarkOrderShipped {
	return &MarkOrderShipped{transitioner: newTransitioner(executor, txManager, orders)}
}

// Execute applies a shipment.created fact.
func (uc *MarkOrderShipped) Execute(ctx context.Context, in events.ShipmentCreatedPayload) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "mark_order_shipped", func(ctx context.Context) (*domain.Order, error) {
		shipmentID, err := identifier.Parse(in.ShipmentID, identifier.Shipment)
		if err != nil {
			return nil, err
		}
		return uc.advance(ctx, in.OrderID, domain.StatusShipped, func(tr *domain.Transition) {
			tr.ShipmentID = &shipmentID
		})
	})
}

// MarkOrderDelivered records that the package reached the customer.
type MarkOrderDelivered struct {
	transitioner
}

// NewMarkOrderDelivered creates a MarkOrderDelivered.
func NewMarkOrderDelivered(
	executor *operation.Executor,
	txManager database.TxManager,
	orders OrderTransitioner,
) *MarkOrderDelivered {
	return &MarkOrderDelivered{transitioner: newTransitioner(executor, txManager, orders)}
}

// Execute applies a shipment.delivered fact.
func (uc *MarkOrderDelivered) Execute(
	ctx context.Context,
	in events.ShipmentDeliveredPayload,
) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "mark_order_delivered", func(ctx context.Context) (*domain.Order, error) {
		if in.ShipmentID == "" {
			return uc.advance(ctx, in.OrderID, domain.StatusDelivered, nil)
		}
		shipmentID, err := identifier.Parse(in.ShipmentID, identifier.Shipment)
		if err != nil {
			return nil, err
		}
		return uc.advance(ctx, in.OrderID, domain.StatusDelivered, func(tr *domain.Transition) {
			tr.ShipmentID = &shipmentID
		})
	})
}

// Routes binds the events consumed by orders to their use cases.
func Routes(
	confirm *ConfirmOrderStock,
	paid *MarkOrderPaid,
	shipped *MarkOrderShipped,
	delivered *MarkOrderDelivered,
) []events.Route {
	return []events.Route{
		events.Bind("confirm_order_stock", events.Critical, func(ctx context.Context, p events.StockAvailablePayload) error {
			return confirm.Execute(ctx, p).Err()
		}),
		events.Bind("mark_order_paid", events.Critical, func(ctx context.Context, p events.PaymentDonePayload) error {
			return paid.Execute(ctx, p).Err()
		}),
		events.Bind("mark_order_shipped", events.Critical, func(ctx context.Context, p events.ShipmentCreatedPayload) error {
			return shipped.Execute(ctx, p).Err()
		}),
		events.Bind("mark_order_delivered", events.Critical,
			func(ctx context.Context, p events.ShipmentDeliveredPayload) error {
				return delivered.Execute(ctx, p).Err()
			}),
	}
}
