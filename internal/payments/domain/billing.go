// Package domain defines the billings owned by the payments service.
package domain

import (
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Status is the payment state of a billing.
type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusAwaitingPayment, StatusPaid}

// Rank orders statuses along the lifecycle. Unknown statuses rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusAwaitingPayment:
		return 1
	case StatusPaid:
		return 2
	default:
		return 0
	}
}

// Reached reports whether s is at or past target.
func (s Status) Reached(target Status) bool {
	return s.Rank() >= target.Rank()
}

// Payment methods accepted by the gateway.
const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodBoleto     = "boleto"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []string{PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodBoleto}

// Billing is the charge issued at the payment gateway for one order.
type Billing struct {
	ID                identifier.ID
	OrderID           identifier.ID
	CustomerID        identifier.ID
	ExternalBillingID string
	PaymentURL        string
	AmountInCents     int64
	Status            Status
	PaymentMethod     string
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AwaitingEvent returns the payment.awaiting fact for b.
func (b *Billing) AwaitingEvent() events.PaymentAwaitingPayload {
	return events.PaymentAwaitingPayload{
		OrderID:       b.OrderID.String(),
		CustomerID:    b.CustomerID.String(),
		BillingID:     b.ID.String(),
		PaymentURL:    b.PaymentURL,
		AmountInCents: b.AmountInCents,
		CreatedAt:     b.CreatedAt,
	}
}

// DoneEvent returns the payment.done fact for a paid b.
func (b *Billing) DoneEvent() events.PaymentDonePayload {
	var paidAt time.Time
	if b.PaidAt != nil {
		paidAt = *b.PaidAt
	}
	return events.PaymentDonePayload{
		OrderID:       b.OrderID.String(),
		CustomerID:    b.CustomerID.String(),
		BillingID:     b.ID.String(),
		PaymentMethod: b.PaymentMethod,
		AmountInCents: b.AmountInCents,
		PaidAt:        paidAt,
	}
}

// Payment is the confirmation of a billing.
type Payment struct {
	PaymentMethod string
	PaidAt        time.Time
}

// MarkPaid applies p to b.
func (b *Billing) MarkPaid(p Payment) {
	paidAt := p.PaidAt
	b.Status = StatusPaid
	b.PaymentMethod = p.PaymentMethod
	b.PaidAt = &paidAt
	b.UpdatedAt = paidAt
}

// Filters narrows a billing search. Zero values do not filter.
type Filters struct {
	Status        Status
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	MinAmount     *int64
	MaxAmount     *int64
	PaymentMethod string
}

// Domain-specific errors for billing operations.
var (
	// ErrBillingNotFound indicates the billing does not exist.
	ErrBillingNotFound = apperrors.Wrap(apperrors.ErrNotFound, "billing not found")
)
