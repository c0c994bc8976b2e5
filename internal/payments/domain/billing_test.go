package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

func TestStatus_Reached(t *testing.T) {
	assert.False(t, StatusAwaitingPayment.Reached(StatusPaid))
	assert.True(t, StatusPaid.Reached(StatusPaid))
	assert.True(t, StatusPaid.Reached(StatusAwaitingPayment))
	assert.Equal(t, 0, Status("REFUNDED").Rank())
}

func TestBilling_Events(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	billing := &Billing{
		ID:            identifier.New(identifier.Billing),
		OrderID:       identifier.New(identifier.Order),
		CustomerID:    identifier.New(identifier.Customer),
		PaymentURL:    "https://pay.local/b/1",
		AmountInCents: 2500,
		Status:        StatusAwaitingPayment,
		CreatedAt:     now,
	}

	awaiting := billing.AwaitingEvent()
	assert.Equal(t, events.PaymentAwaiting, awaiting.EventType())
	assert.Equal(t, billing.OrderID.String(), awaiting.Key())
	assert.Equal(t, "https://pay.local/b/1", awaiting.PaymentURL)
	assert.Equal(t, int64(2500), awaiting.AmountInCents)

	paidAt := now.Add(time.Hour)
	billing.MarkPaid(Payment{PaymentMethod: PaymentMethodPix, PaidAt: paidAt})

	require.NotNil(t, billing.PaidAt)
	assert.Equal(t, StatusPaid, billing.Status)
	done := billing.DoneEvent()
	assert.Equal(t, "pix", done.PaymentMethod)
	assert.Equal(t, paidAt, done.PaidAt)
	assert.Equal(t, billing.ID.String(), done.BillingID)
}
