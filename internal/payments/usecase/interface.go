// Package usecase implements the payments business logic: billing issuance on
// stock.available, payment confirmation through the gateway webhook, and customer queries.
package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
)

// BillingCreator stores billings and finds the billing of an order.
type BillingCreator interface {
	Save(ctx context.Context, billing *domain.Billing) error
	ValidateID(ctx context.Context, orderID identifier.ID) (*domain.Billing, error)
}

// BillingPayer locks a billing by its gateway id and records its payment.
type BillingPayer interface {
	FindByExternalIDForUpdate(ctx context.Context, externalID string) (*domain.Billing, error)
	UpdatePayment(ctx context.Context, billing *domain.Billing) error
}

// BillingSearcher pages through the billings of a customer.
type BillingSearcher interface {
	Search(
		ctx context.Context,
		customerID identifier.ID,
		filters domain.Filters,
		page database.Page,
	) (*database.PagedResult[*domain.Billing], error)
}

// EventEmitter enqueues events in the outbox of the current transaction.
type EventEmitter interface {
	Emit(ctx context.Context, payloads ...events.Payload) error
}
