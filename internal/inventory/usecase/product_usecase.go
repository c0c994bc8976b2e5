package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	shadowUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// CreateProductInput contains the input data for a catalog entry
type CreateProductInput struct {
	EmployeeID     identifier.ID
	Name           string
	PriceInCents   int64
	AvailableCount int
}

// Validate validates the product fields using jellydator/validation
func (in CreateProductInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&in.PriceInCents,
			validation.Required.Error("price must be positive"),
			validation.Min(int64(1)).Error("price must be positive"),
		),
		validation.Field(&in.AvailableCount,
			validation.Min(0).Error("available count must not be negative"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateProduct adds a product to the catalog on behalf of an employee known to
// inventory through its local shadow.
type CreateProduct struct {
	executor  *operation.Executor
	employees shadowUseCase.Finder
	products  ProductSaver
	now       func() time.Time
}

// NewCreateProduct creates a CreateProduct.
func NewCreateProduct(
	executor *operation.Executor,
	employees shadowUseCase.Finder,
	products ProductSaver,
) *CreateProduct {
	return &CreateProduct{executor: executor, employees: employees, products: products, now: time.Now}
}

// Execute validates the input and saves the product. An employee without a shadow
// fails with ErrNotFound.
func (uc *CreateProduct) Execute(ctx context.Context, in CreateProductInput) result.Result[*domain.Product] {
	return operation.Execute(ctx, uc.executor, "create_product", func(ctx context.Context) (*domain.Product, error) {
		if err := in.Validate(); err != nil {
			return nil, err
		}

		employee, err := shadowUseCase.Require(ctx, uc.employees, in.EmployeeID)
		if err != nil {
			return nil, err
		}

		now := uc.now().UTC()
		product := &domain.Product{
			ID:             identifier.New(identifier.Product),
			Name:           strings.TrimSpace(in.Name),
			PriceInCents:   in.PriceInCents,
			AvailableCount: in.AvailableCount,
			CreatedBy:      employee.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.products.Save(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	})
}

// SearchProducts pages through the catalog.
type SearchProducts struct {
	executor *operation.Executor
	products ProductSearcher
}

// NewSearchProducts creates a SearchProducts.
func NewSearchProducts(executor *operation.Executor, products ProductSearcher) *SearchProducts {
	return &SearchProducts{executor: executor, products: products}
}

// Execute returns one page of products.
func (uc *SearchProducts) Execute(
	ctx context.Context,
	page database.Page,
) result.Result[*database.PagedResult[*domain.Product]] {
	return operation.Execute(ctx, uc.executor, "search_products",
		func(ctx context.Context) (*database.PagedResult[*domain.Product], error) {
			return uc.products.Search(ctx, page.Normalize())
		})
}
