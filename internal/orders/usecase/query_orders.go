package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// GetOrderInput identifies an order of a customer.
type GetOrderInput struct {
	CustomerID identifier.ID
	OrderID    string
}

// GetOrder returns one order of the requesting customer.
type GetOrder struct {
	executor *operation.Executor
	orders   OrderFinder
}

// NewGetOrder creates a GetOrder.
func NewGetOrder(executor *operation.Executor, orders OrderFinder) *GetOrder {
	return &GetOrder{executor: executor, orders: orders}
}

// Execute returns the order. Orders of other customers are reported as not found.
func (uc *GetOrder) Execute(ctx context.Context, in GetOrderInput) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "get_order", func(ctx context.Context) (*domain.Order, error) {
		orderID, err := identifier.Parse(in.OrderID, identifier.Order)
		if err != nil {
			return nil, err
		}

		order, err := uc.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.CustomerID != in.CustomerID {
			return nil, apperrors.Wrapf(domain.ErrOrderNotFound, "order %s", orderID)
		}
		return order, nil
	})
}

// SearchOrdersInput selects a page of a customer's orders.
type SearchOrdersInput struct {
	CustomerID identifier.ID
	Filters    domain.Filters
	Page       database.Page
}

// Validate checks that the filters are consistent.
func (in SearchOrdersInput) Validate() error {
	statuses := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		statuses[i] = string(s)
	}

	f := in.Filters
	status := string(f.Status)
	err := validation.Errors{
		"status":        validation.Validate(status, appValidation.OneOf(statuses...)),
		"paymentMethod": validation.Validate(f.PaymentMethod, appValidation.OneOf(domain.PaymentMethods...)),
		"minAmount":     validation.Validate(f.MinAmount, validation.Min(int64(0)).Error("must not be negative")),
		"maxAmount":     validation.Validate(f.MaxAmount, validation.Min(int64(0)).Error("must not be negative")),
	}.Filter()
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "createdFrom must not be after createdTo")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "minAmount must not exceed maxAmount")
	}
	return nil
}

// SearchOrders pages through the orders of the requesting customer.
type SearchOrders struct {
	executor *operation.Executor
	orders   OrderSearcher
}

// NewSearchOrders creates a SearchOrders.
func NewSearchOrders(executor *operation.Executor, orders OrderSearcher) *SearchOrders {
	return &SearchOrders{executor: executor, orders: orders}
}

// Execute validates the filters and returns one page of orders.
func (uc *SearchOrders) Execute(
	ctx context.Context,
	in SearchOrdersInput,
) result.Result[*database.PagedResult[*domain.Order]] {
	return operation.Execute(ctx, uc.executor, "search_orders",
		func(ctx context.Context) (*database.PagedResult[*domain.Order], error) {
			if err := in.Validate(); err != nil {
				return nil, err
			}
			filters := in.Filters
			if filters.CreatedFrom != nil {
				from := filters.CreatedFrom.UTC()
				filters.CreatedFrom = &from
			}
			if filters.CreatedTo != nil {
				to := filters.CreatedTo.UTC()
				filters.CreatedTo = &to
			}
			return uc.orders.Search(ctx, in.CustomerID, filters, in.Page.Normalize())
		})
}
