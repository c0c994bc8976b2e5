package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"
	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// ConfirmPaymentInput is the gateway notification that a billing was paid.
type ConfirmPaymentInput struct {
	ExternalBillingID string
	PaymentMethod     string
}

// Validate validates the notification using jellydator/validation
func (in ConfirmPaymentInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ExternalBillingID,
			validation.Required.Error("external billing id is required"),
			appValidation.NotBlank,
		),
		validation.Field(&in.PaymentMethod,
			validation.Required.Error("payment method is required"),
			appValidation.OneOf(domain.PaymentMethods...),
		),
	)
	return appValidation.WrapValidationError(err)
}

// ConfirmPayment moves a billing to PAID and announces it with payment.done.
type ConfirmPayment struct {
	executor  *operation.Executor
	txManager database.TxManager
	billings  BillingPayer
	emitter   EventEmitter
	now       func() time.Time
}

// NewConfirmPayment creates a ConfirmPayment.
func NewConfirmPayment(
	executor *operation.Executor,
	txManager database.TxManager,
	billings BillingPayer,
	emitter EventEmitter,
) *ConfirmPayment {
	return &ConfirmPayment{
		executor:  executor,
		txManager: txManager,
		billings:  billings,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Execute records the payment under a row lock. A billing that is already PAID is
// returned unchanged and payment.done is not emitted again.
func (uc *ConfirmPayment) Execute(ctx context.Context, in ConfirmPaymentInput) result.Result[*domain.Billing] {
	return operation.Execute(ctx, uc.executor, "confirm_payment", func(ctx context.Context) (*domain.Billing, error) {
		if err := in.Validate(); err != nil {
			return nil, err
		}
		externalID := strings.TrimSpace(in.ExternalBillingID)

		var billing *domain.Billing
		err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			found, err := uc.billings.FindByExternalIDForUpdate(ctx, externalID)
			if err != nil {
				return err
			}
			billing = found

			if billing.Status.Reached(domain.StatusPaid) {
				uc.executor.Logger().Debug("billing already paid",
					zap.String("billing_id", billing.ID.String()),
					zap.String("order_id", billing.OrderID.String()),
				)
				return nil
			}

			billing.MarkPaid(domain.Payment{PaymentMethod: in.PaymentMethod, PaidAt: uc.now().UTC()})
			if err := uc.billings.UpdatePayment(ctx, billing); err != nil {
				return err
			}
			return uc.emitter.Emit(ctx, billing.DoneEvent())
		})
		if err != nil {
			return nil, err
		}
		return billing, nil
	})
}
