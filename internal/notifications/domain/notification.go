// Package domain defines the notifications sent to customers.
package domain

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// Kind names a notification template. One notification of each kind is sent per order.
type Kind string

const (
	KindBillingEmail Kind = "billing_email"
)

// Notification records a message delivered to a customer.
type Notification struct {
	ID         identifier.ID
	OrderID    identifier.ID
	CustomerID identifier.ID
	Kind       Kind
	Recipient  string
	SentAt     time.Time
}
