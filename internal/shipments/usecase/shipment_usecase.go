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
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	shadowUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
)

// CreateShipment opens the shipment of a paid order and announces it with shipment.created.
type CreateShipment struct {
	executor  *operation.Executor
	txManager database.TxManager
	customers shadowUseCase.Finder
	shipments ShipmentCreator
	emitter   EventEmitter
	now       func() time.Time
}

// NewCreateShipment creates a CreateShipment.
func NewCreateShipment(
	executor *operation.Executor,
	txManager database.TxManager,
	customers shadowUseCase.Finder,
	shipments ShipmentCreator,
	emitter EventEmitter,
) *CreateShipment {
	return &CreateShipment{
		executor:  executor,
		txManager: txManager,
		customers: customers,
		shipments: shipments,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Execute creates one shipment per order. A redelivered payment.done returns the stored
// shipment without emitting again.
func (uc *CreateShipment) Execute(ctx context.Context, in events.PaymentDonePayload) result.Result[*domain.Shipment] {
	return operation.Execute(ctx, uc.executor, "create_shipment", func(ctx context.Context) (*domain.Shipment, error) {
		orderID, err := identifier.Parse(in.OrderID, identifier.Order)
		if err != nil {
			return nil, err
		}
		customerID, err := identifier.Parse(in.CustomerID, identifier.Customer)
		if err != nil {
			return nil, err
		}

		if _, err := shadowUseCase.Require(ctx, uc.customers, customerID); err != nil {
			return nil, err
		}

		var shipment *domain.Shipment
		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			existing, err := uc.shipments.ValidateID(ctx, orderID)
			if err != nil {
				return err
			}
			if existing != nil {
				shipment = existing
				return nil
			}

			now := uc.now().UTC()
			shipment = &domain.Shipment{
				ID:         identifier.New(identifier.Shipment),
				OrderID:    orderID,
				CustomerID: customerID,
				Status:     domain.StatusCreated,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := uc.shipments.Save(ctx, shipment); err != nil {
				return err
			}
			return uc.emitter.Emit(ctx, shipment.CreatedEvent())
		})
		if err != nil {
			// A concurrent delivery of the same event created it first.
			if apperrors.Is(err, apperrors.ErrConflict) {
				if stored, findErr := uc.shipments.ValidateID(ctx, orderID); findErr == nil && stored != nil {
					return stored, nil
				}
			}
			return nil, err
		}
		return shipment, nil
	})
}

// CreateShipmentRoute binds payment.done to uc.
func CreateShipmentRoute(uc *CreateShipment) events.Route {
	return events.Bind("create_shipment", events.Critical, func(ctx context.Context, p events.PaymentDonePayload) error {
		return uc.Execute(ctx, p).Err()
	})
}

// MarkShipmentDeliveredInput identifies the delivered shipment.
type MarkShipmentDeliveredInput struct {
	ShipmentID string
}

// MarkShipmentDelivered records the delivery of a shipment and announces it with
// shipment.delivered.
type MarkShipmentDelivered struct {
	executor  *operation.Executor
	txManager database.TxManager
	shipments ShipmentDeliverer
	emitter   EventEmitter
	now       func() time.Time
}

// NewMarkShipmentDelivered creates a MarkShipmentDelivered.
func NewMarkShipmentDelivered(
	executor *operation.Executor,
	txManager database.TxManager,
	shipments ShipmentDeliverer,
	emitter EventEmitter,
) *MarkShipmentDelivered {
	return &MarkShipmentDelivered{
		executor:  executor,
		txManager: txManager,
		shipments: shipments,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Execute moves the shipment to DELIVERED under a row lock. A shipment already delivered
// is returned unchanged and shipment.delivered is not emitted again.
func (uc *MarkShipmentDelivered) Execute(
	ctx context.Context,
	in MarkShipmentDeliveredInput,
) result.Result[*domain.Shipment] {
	return operation.Execute(ctx, uc.executor, "mark_shipment_delivered",
		func(ctx context.Context) (*domain.Shipment, error) {
			shipmentID, err := identifier.Parse(in.ShipmentID, identifier.Shipment)
			if err != nil {
				return nil, err
			}

			var shipment *domain.Shipment
			err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
				found, err := uc.shipments.FindByIDForUpdate(ctx, shipmentID)
				if err != nil {
					return err
				}
				shipment = found

				if shipment.Status.Reached(domain.StatusDelivered) {
					uc.executor.Logger().Debug("shipment already delivered",
						zap.String("shipment_id", shipmentID.String()))
					return nil
				}

				shipment.MarkDelivered(uc.now().UTC())
				if err := uc.shipments.UpdateDelivery(ctx, shipment); err != nil {
					return err
				}
				return uc.emitter.Emit(ctx, shipment.DeliveredEvent())
			})
			if err != nil {
				return nil, err
			}
			return shipment, nil
		})
}
