// Package domain defines the orders owned by the orders service and their forward-only
// status lifecycle.
package domain

import (
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Status is the position of an order in the purchase saga.
type Status string

const (
	StatusCreated         Status = "CREATED"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
)

var statusRank = map[Status]int{
	StatusCreated:         1,
	StatusAwaitingPayment: 2,
	StatusPaid:            3,
	StatusShipped:         4,
	StatusDelivered:       5,
}

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusCreated, StatusAwaitingPayment, StatusPaid, StatusShipped, StatusDelivered}

// Rank orders statuses along the lifecycle. Unknown statuses rank 0.
func (s Status) Rank() int {
	return statusRank[s]
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s.Rank() > 0
}

// Reached reports whether s is at or past target.
func (s Status) Reached(target Status) bool {
	return s.Rank() >= target.Rank()
}

// Payment methods reported by the payment gateway.
const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodBoleto     = "boleto"
)

// PaymentMethods lists the payment methods orders can be filtered by.
var PaymentMethods = []string{PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodBoleto}

// Item is one product line of an order. PriceInCents is zero until inventory prices
// the reservation.
type Item struct {
	ProductID    identifier.ID
	Quantity     int
	PriceInCents int64
}

// Order represents a customer purchase.
type Order struct {
	ID                 identifier.ID
	CustomerID         identifier.ID
	Status             Status
	TotalAmountInCents int64
	Items              []Item
	PaymentMethod      string
	ShipmentID         identifier.ID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// CreatedEvent returns the order.created fact for o.
func (o *Order) CreatedEvent() events.OrderCreatedPayload {
	products := make([]events.ProductLine, len(o.Items))
	for i, item := range o.Items {
		products[i] = events.ProductLine{ID: item.ProductID.String(), Quantity: item.Quantity}
	}
	return events.OrderCreatedPayload{
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		Products:   products,
		CreatedAt:  o.CreatedAt,
	}
}

// Transition is a status change plus the columns it owns. Nil fields are left untouched.
type Transition struct {
	OrderID            identifier.ID
	Status             Status
	TotalAmountInCents *int64
	Items              []Item
	PaymentMethod      *string
	ShipmentID         *identifier.ID
	UpdatedAt          time.Time
}

// Apply copies the transition onto o.
func (o *Order) Apply(t Transition) {
	o.Status = t.Status
	o.UpdatedAt = t.UpdatedAt
	if t.TotalAmountInCents != nil {
		o.TotalAmountInCents = *t.TotalAmountInCents
	}
	if t.Items != nil {
		o.Items = t.Items
	}
	if t.PaymentMethod != nil {
		o.PaymentMethod = *t.PaymentMethod
	}
	if t.ShipmentID != nil {
		o.ShipmentID = *t.ShipmentID
	}
}

// Priced reports whether inventory has priced o.
func (o *Order) Priced() bool {
	if o.TotalAmountInCents > 0 {
		return true
	}
	for _, item := range o.Items {
		if item.PriceInCents > 0 {
			return true
		}
	}
	return false
}

// Backfill returns the columns of t that o is still missing, keeping the current status.
// An overtaken transition thus never rewinds o yet still records what only it carries.
// ok is false when o already holds every column t owns.
func (o *Order) Backfill(t Transition) (fill Transition, ok bool) {
	fill = Transition{OrderID: t.OrderID, Status: o.Status, UpdatedAt: t.UpdatedAt}
	if t.TotalAmountInCents != nil && !o.Priced() {
		fill.TotalAmountInCents = t.TotalAmountInCents
		fill.Items = t.Items
		ok = true
	}
	if t.PaymentMethod != nil && o.PaymentMethod == "" {
		fill.PaymentMethod = t.PaymentMethod
		ok = true
	}
	if t.ShipmentID != nil && o.ShipmentID.IsZero() {
		fill.ShipmentID = t.ShipmentID
		ok = true
	}
	return fill, ok
}

// Filters narrows an order search. Zero values do not filter.
type Filters struct {
	Status        Status
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	MinAmount     *int64
	MaxAmount     *int64
	PaymentMethod string
}

// Domain-specific errors for order operations.
var (
	// ErrOrderNotFound indicates the order does not exist or belongs to another customer.
	ErrOrderNotFound = apperrors.Wrap(apperrors.ErrNotFound, "order not found")
)
