package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	shadowUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// maxItems bounds the number of lines of one order.
const maxItems = 100

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// Validate validates the line using jellydator/validation
func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProductID,
			validation.Required.Error("product id is required"),
			appValidation.Identifier(identifier.Product),
		),
		validation.Field(&in.Quantity,
			validation.Required.Error("quantity must be positive"),
			validation.Min(1).Error("quantity must be positive"),
		),
	)
}

// CreateOrderInput contains the input data for placing an order
type CreateOrderInput struct {
	CustomerID identifier.ID
	Items      []ItemInput
}

// Validate validates the order lines using jellydator/validation
func (in CreateOrderInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Items,
			validation.Required.Error("at least one item is required"),
			validation.Length(1, maxItems).Error("an order has between 1 and 100 items"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateOrder places an order for a customer known to orders through its local shadow
// and announces it with order.created.
type CreateOrder struct {
	executor  *operation.Executor
	txManager database.TxManager
	customers shadowUseCase.Finder
	orders    OrderSaver
	emitter   EventEmitter
	now       func() time.Time
}

// NewCreateOrder creates a CreateOrder.
func NewCreateOrder(
	executor *operation.Executor,
	txManager database.TxManager,
	customers shadowUseCase.Finder,
	orders OrderSaver,
	emitter EventEmitter,
) *CreateOrder {
	return &CreateOrder{
		executor:  executor,
		txManager: txManager,
		customers: customers,
		orders:    orders,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Execute validates the input, saves the order as CREATED and enqueues order.created in
// the same transaction. A customer without a shadow fails with ErrNotFound.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) result.Result[*domain.Order] {
	return operation.Execute(ctx, uc.executor, "create_order", func(ctx context.Context) (*domain.Order, error) {
		if err := in.Validate(); err != nil {
			return nil, err
		}
		items, err := toItems(in.Items)
		if err != nil {
			return nil, err
		}

		customer, err := shadowUseCase.Require(ctx, uc.customers, in.CustomerID)
		if err != nil {
			return nil, err
		}

		now := uc.now().UTC()
		order := &domain.Order{
			ID:         identifier.New(identifier.Order),
			CustomerID: customer.ID,
			Status:     domain.StatusCreated,
			Items:      items,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := uc.orders.Save(ctx, order); err != nil {
				return err
			}
			return uc.emitter.Emit(ctx, order.CreatedEvent())
		})
		if err != nil {
			return nil, err
		}
		return order, nil
	})
}

// toItems parses each line and sums quantities of repeated products, keeping the
// order of first appearance.
func toItems(lines []ItemInput) ([]domain.Item, error) {
	index := make(map[identifier.ID]int, len(lines))
	items := make([]domain.Item, 0, len(lines))
	for _, line := range lines {
		productID, err := identifier.Parse(line.ProductID, identifier.Product)
		if err != nil {
			return nil, err
		}
		if j, ok := index[productID]; ok {
			items[j].Quantity += line.Quantity
			continue
		}
		index[productID] = len(items)
		items = append(items, domain.Item{ProductID: productID, Quantity: line.Quantity})
	}
	return items, nil
}
