package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// SearchBillingsInput selects a page of a customer's billings.
type SearchBillingsInput struct {
	CustomerID identifier.ID
	Filters    domain.Filters
	Page       database.Page
}

// Validate checks that the filters are consistent.
func (in SearchBillingsInput) Validate() error {
	statuses := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		statuses[i] = string(s)
	}

	f := in.Filters
	err := validation.Errors{
		"status":        validation.Validate(string(f.Status), appValidation.OneOf(statuses...)),
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

// SearchBillings pages through the billings of the requesting customer.
type SearchBillings struct {
	executor *operation.Executor
	billings BillingSearcher
}

// NewSearchBillings creates a SearchBillings.
func NewSearchBillings(executor *operation.Executor, billings BillingSearcher) *SearchBillings {
	return &SearchBillings{executor: executor, billings: billings}
}

// Execute validates the filters and returns one page of billings.
func (uc *SearchBillings) Execute(
	ctx context.Context,
	in SearchBillingsInput,
) result.Result[*database.PagedResult[*domain.Billing]] {
	return operation.Execute(ctx, uc.executor, "search_billings",
		func(ctx context.Context) (*database.PagedResult[*domain.Billing], error) {
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
			return uc.billings.Search(ctx, in.CustomerID, filters, in.Page.Normalize())
		})
}
