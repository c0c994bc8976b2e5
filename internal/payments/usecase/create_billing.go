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
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/gateway"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	shadowUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// CreateBilling issues the gateway charge of an order whose stock is reserved and
// announces it with payment.awaiting.
type CreateBilling struct {
	executor  *operation.Executor
	txManager database.TxManager
	customers shadowUseCase.Finder
	billings  BillingCreator
	gateway   gateway.Gateway
	emitter   EventEmitter
	now       func() time.Time
}

// NewCreateBilling creates a CreateBilling.
func NewCreateBilling(
	executor *operation.Executor,
	txManager database.TxManager,
	customers shadowUseCase.Finder,
	billings BillingCreator,
	gw gateway.Gateway,
	emitter EventEmitter,
) *CreateBilling {
	return &CreateBilling{
		executor:  executor,
		txManager: txManager,
		customers: customers,
		billings:  billings,
		gateway:   gw,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Execute bills the order once. A redelivered stock.available returns the stored billing
// without calling the gateway or emitting again. The order id is the gateway idempotency
// key, so a retry after a failed save gets the same charge back.
func (uc *CreateBilling) Execute(ctx context.Context, in events.StockAvailablePayload) result.Result[*domain.Billing] {
	return operation.Execute(ctx, uc.executor, "create_billing", func(ctx context.Context) (*domain.Billing, error) {
		orderID, err := identifier.Parse(in.OrderID, identifier.Order)
		if err != nil {
			return nil, err
		}
		customerID, err := identifier.Parse(in.CustomerID, identifier.Customer)
		if err != nil {
			return nil, err
		}
		if in.TotalAmountInCents < 0 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "negative amount %d", in.TotalAmountInCents)
		}

		existing, err := uc.billings.ValidateID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			uc.executor.Logger().Debug("order already billed", zap.String("order_id", orderID.String()))
			return existing, nil
		}

		customer, err := shadowUseCase.Require(ctx, uc.customers, customerID)
		if err != nil {
			return nil, err
		}

		charge, err := uc.gateway.CreateBilling(ctx, gateway.ChargeRequest{
			IdempotencyKey: orderID.String(),
			CustomerID:     customer.ID.String(),
			CustomerName:   customer.Name,
			CustomerEmail:  customer.Email,
			AmountInCents:  in.TotalAmountInCents,
			Description:    "order " + orderID.String(),
		})
		if err != nil {
			return nil, err
		}

		now := uc.now().UTC()
		billing := &domain.Billing{
			ID:                identifier.New(identifier.Billing),
			OrderID:           orderID,
			CustomerID:        customerID,
			ExternalBillingID: charge.ExternalID,
			PaymentURL:        charge.PaymentURL,
			AmountInCents:     in.TotalAmountInCents,
			Status:            domain.StatusAwaitingPayment,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := uc.billings.Save(ctx, billing); err != nil {
				return err
			}
			return uc.emitter.Emit(ctx, billing.AwaitingEvent())
		})
		if err != nil {
			// A concurrent delivery of the same event billed the order first.
			if apperrors.Is(err, apperrors.ErrConflict) {
				stored, findErr := uc.billings.ValidateID(ctx, orderID)
				if findErr != nil {
					return nil, findErr
				}
				if stored != nil {
					return stored, nil
				}
			}
			return nil, err
		}
		return billing, nil
	})
}

// CreateBillingRoute binds stock.available to uc.
func CreateBillingRoute(uc *CreateBilling) events.Route {
	return events.Bind("create_billing", events.Critical, func(ctx context.Context, p events.StockAvailablePayload) error {
		return uc.Execute(ctx, p).Err()
	})
}
