package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
)

func TestCreateOrderRequest_Validate(t *testing.T) {
	productID := identifier.New(identifier.Product).String()

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr bool
	}{
		{name: "valid", req: CreateOrderRequest{Items: []OrderItemRequest{{ProductID: productID, Quantity: 1}}}},
		{name: "no items", req: CreateOrderRequest{}, wantErr: true},
		{name: "bad product", req: CreateOrderRequest{Items: []OrderItemRequest{{ProductID: "x", Quantity: 1}}},
			wantErr: true},
		{name: "zero quantity", req: CreateOrderRequest{Items: []OrderItemRequest{{ProductID: productID}}},
			wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSearchOrdersQuery_ToSearchOrdersInput(t *testing.T) {
	customerID := identifier.New(identifier.Customer)
	to := time.Now().UTC()
	maxAmount := int64(900)
	q := SearchOrdersQuery{Status: "SHIPPED", CreatedTo: &to, MaxAmount: &maxAmount, PaymentMethod: "boleto"}

	in := q.ToSearchOrdersInput(customerID, database.Page{Offset: 5, Limit: 5})

	assert.Equal(t, customerID, in.CustomerID)
	assert.Equal(t, domain.StatusShipped, in.Filters.Status)
	assert.Equal(t, &to, in.Filters.CreatedTo)
	assert.Nil(t, in.Filters.CreatedFrom)
	assert.Equal(t, &maxAmount, in.Filters.MaxAmount)
	assert.Equal(t, "boleto", in.Filters.PaymentMethod)
	assert.Equal(t, database.Page{Offset: 5, Limit: 5}, in.Page)
}

func TestMapOrderToResponse(t *testing.T) {
	productID := identifier.New(identifier.Product)
	order := &domain.Order{
		ID:                 identifier.New(identifier.Order),
		CustomerID:         identifier.New(identifier.Customer),
		Status:             domain.StatusAwaitingPayment,
		TotalAmountInCents: 2500,
		Items:              []domain.Item{{ProductID: productID, Quantity: 2, PriceInCents: 1250}},
	}

	response := MapOrderToResponse(order)

	assert.Equal(t, "AWAITING_PAYMENT", response.Status)
	assert.Equal(t, int64(2500), response.TotalAmountInCents)
	assert.Equal(t, []OrderItemResponse{{ProductID: productID.String(), Quantity: 2, PriceInCents: 1250}},
		response.Items)
	assert.Empty(t, response.PaymentMethod)
	assert.Empty(t, response.ShipmentID)
}
