// Package usecase implements the customer notifications triggered by saga events.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/email"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	shadowUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// NotificationRepository records sent notifications.
type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	ValidateID(ctx context.Context, orderID identifier.ID, kind domain.Kind) (*domain.Notification, error)
}

// SendBillingEmail e-mails the payment link of a new billing to the customer.
type SendBillingEmail struct {
	executor      *operation.Executor
	customers     shadowUseCase.Finder
	notifications NotificationRepository
	sender        email.Sender
	now           func() time.Time
}

// NewSendBillingEmail creates a SendBillingEmail.
func NewSendBillingEmail(
	executor *operation.Executor,
	customers shadowUseCase.Finder,
	notifications NotificationRepository,
	sender email.Sender,
) *SendBillingEmail {
	return &SendBillingEmail{
		executor:      executor,
		customers:     customers,
		notifications: notifications,
		sender:        sender,
		now:           time.Now,
	}
}

// Execute sends the billing e-mail once per order. The notification is recorded after a
// successful delivery, so a redelivered event after a crash in between sends the e-mail
// twice. A failed send is not retried: the route drops it.
func (uc *SendBillingEmail) Execute(
	ctx context.Context,
	in events.PaymentAwaitingPayload,
) result.Result[*domain.Notification] {
	return operation.Execute(ctx, uc.executor, "send_billing_email",
		func(ctx context.Context) (*domain.Notification, error) {
			orderID, err := identifier.Parse(in.OrderID, identifier.Order)
			if err != nil {
				return nil, err
			}
			customerID, err := identifier.Parse(in.CustomerID, identifier.Customer)
			if err != nil {
				return nil, err
			}
			if in.AmountInCents < 0 {
				return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "negative amount %d", in.AmountInCents)
			}

			sent, err := uc.notifications.ValidateID(ctx, orderID, domain.KindBillingEmail)
			if err != nil {
				return nil, err
			}
			if sent != nil {
				uc.executor.Logger().Debug("billing email already sent", zap.String("order_id", orderID.String()))
				return sent, nil
			}

			customer, err := shadowUseCase.Require(ctx, uc.customers, customerID)
			if err != nil {
				return nil, err
			}

			msg := email.Message{
				To:      email.Address{Email: customer.Email, Name: customer.Name},
				Subject: "Your order is awaiting payment",
				Text:    billingText(customer.Name, orderID, in.AmountInCents, in.PaymentURL),
			}
			if err := uc.sender.Send(ctx, msg); err != nil {
				return nil, err
			}

			n := &domain.Notification{
				ID:         identifier.New(identifier.Notification),
				OrderID:    orderID,
				CustomerID: customerID,
				Kind:       domain.KindBillingEmail,
				Recipient:  customer.Email,
				SentAt:     uc.now().UTC(),
			}
			if err := uc.notifications.Save(ctx, n); err != nil {
				if apperrors.Is(err, apperrors.ErrConflict) {
					return n, nil
				}
				return nil, err
			}
			return n, nil
		})
}

func billingText(name string, orderID identifier.ID, amountInCents int64, paymentURL string) string {
	return fmt.Sprintf("Hello %s,\n\nYour order %s is reserved. Pay %d.%02d at %s to complete it.\n",
		name, orderID, amountInCents/100, amountInCents%100, paymentURL)
}

// SendBillingEmailRoute binds payment.awaiting to uc. Failures are logged and dropped.
func SendBillingEmailRoute(uc *SendBillingEmail) events.Route {
	return events.Bind("send_billing_email", events.BestEffort,
		func(ctx context.Context, p events.PaymentAwaitingPayload) error {
			return uc.Execute(ctx, p).Err()
		})
}
