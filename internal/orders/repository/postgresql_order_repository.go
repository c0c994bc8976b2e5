// Package repository provides data persistence implementations for orders.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
)

const orderEntity = "order"

const orderColumns = `id, customer_id, status, total_amount_in_cents, items, payment_method, shipment_id,
			  created_at, updated_at, deleted_at`

// itemRow is the stored form of an order item.
type itemRow struct {
	ProductID    string `json:"productID"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"priceInCents"`
}

// PostgreSQLOrderRepository handles order persistence for PostgreSQL
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Save inserts a new order
func (r *PostgreSQLOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	items, err := encodeItems(order.Items)
	if err != nil {
		return apperrors.NewRepositoryError(orderEntity, "save", err)
	}

	query := `INSERT INTO orders_orders (id, customer_id, status, total_amount_in_cents, items, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(ctx, query, order.ID, order.CustomerID, string(order.Status),
		order.TotalAmountInCents, items, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "order %s already exists", order.ID)
		}
		return apperrors.NewRepositoryError(orderEntity, "save", err)
	}
	return nil
}

// FindByID returns a live order by id.
func (r *PostgreSQLOrderRepository) FindByID(ctx context.Context, id identifier.ID) (*domain.Order, error) {
	return r.findByID(ctx, id, "find_by_id", "")
}

// FindByIDForUpdate returns a live order by id and locks its row until the surrounding
// transaction ends.
func (r *PostgreSQLOrderRepository) FindByIDForUpdate(ctx context.Context, id identifier.ID) (*domain.Order, error) {
	return r.findByID(ctx, id, "find_by_id_for_update", " FOR UPDATE")
}

func (r *PostgreSQLOrderRepository) findByID(
	ctx context.Context,
	id identifier.ID,
	operation, lock string,
) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + `
			  FROM orders_orders
			  WHERE id = $1 AND deleted_at IS NULL` + lock

	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(domain.ErrOrderNotFound, "order %s", id)
		}
		return nil, apperrors.NewRepositoryError(orderEntity, operation, err)
	}
	return order, nil
}

// Update writes the status of a transition and only the columns it carries.
func (r *PostgreSQLOrderRepository) Update(ctx context.Context, t domain.Transition) error {
	querier := database.GetTx(ctx, r.db)

	sets := []string{"status = $1", "updated_at = $2"}
	args := []any{string(t.Status), t.UpdatedAt}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if t.TotalAmountInCents != nil {
		add("total_amount_in_cents", *t.TotalAmountInCents)
	}
	if t.Items != nil {
		items, err := encodeItems(t.Items)
		if err != nil {
			return apperrors.NewRepositoryError(orderEntity, "update", err)
		}
		add("items", items)
	}
	if t.PaymentMethod != nil {
		add("payment_method", *t.PaymentMethod)
	}
	if t.ShipmentID != nil {
		add("shipment_id", *t.ShipmentID)
	}

	args = append(args, t.OrderID)
	query := `UPDATE orders_orders SET ` + strings.Join(sets, ", ") + `
			  WHERE id = $` + strconv.Itoa(len(args)) + ` AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewRepositoryError(orderEntity, "update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewRepositoryError(orderEntity, "update", err)
	}
	if affected == 0 {
		return apperrors.Wrapf(domain.ErrOrderNotFound, "order %s", t.OrderID)
	}
	return nil
}

// Search returns one page of the orders of customerID matching filters, newest first.
// TotalCount counts every matching order regardless of the page.
func (r *PostgreSQLOrderRepository) Search(
	ctx context.Context,
	customerID identifier.ID,
	filters domain.Filters,
	page database.Page,
) (*database.PagedResult[*domain.Order], error) {
	querier := database.GetTx(ctx, r.db)
	page = page.Normalize()

	where, args := buildFilters(customerID, filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM orders_orders WHERE ` + where
	if err := querier.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, apperrors.NewRepositoryError(orderEntity, "search", err)
	}

	n := len(args)
	query := `SELECT ` + orderColumns + `
			  FROM orders_orders
			  WHERE ` + where + `
			  ORDER BY created_at DESC, id DESC
			  LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	rows, err := querier.QueryContext(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, apperrors.NewRepositoryError(orderEntity, "search", err)
	}
	defer rows.Close() //nolint:errcheck

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.NewRepositoryError(orderEntity, "search", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError(orderEntity, "search", err)
	}

	return &database.PagedResult[*domain.Order]{
		Items:      orders,
		TotalCount: total,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

// buildFilters returns the WHERE clause and its positional arguments.
func buildFilters(customerID identifier.ID, f domain.Filters) (string, []any) {
	conditions := []string{"customer_id = $1", "deleted_at IS NULL"}
	args := []any{customerID}
	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, condition+" $"+strconv.Itoa(len(args)))
	}

	if f.Status != "" {
		add("status =", string(f.Status))
	}
	if f.CreatedFrom != nil {
		add("created_at >=", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <=", *f.CreatedTo)
	}
	if f.MinAmount != nil {
		add("total_amount_in_cents >=", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("total_amount_in_cents <=", *f.MaxAmount)
	}
	if f.PaymentMethod != "" {
		add("payment_method =", f.PaymentMethod)
	}

	return strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order         domain.Order
		rawID         string
		rawCustomerID string
		status        string
		rawItems      []byte
		paymentMethod sql.NullString
		shipmentID    sql.NullString
		deletedAt     sql.NullTime
	)
	err := row.Scan(&rawID, &rawCustomerID, &status, &order.TotalAmountInCents, &rawItems, &paymentMethod,
		&shipmentID, &order.CreatedAt, &order.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if order.ID, err = identifier.Parse(rawID, identifier.Order); err != nil {
		return nil, err
	}
	if order.CustomerID, err = identifier.Parse(rawCustomerID, identifier.Customer); err != nil {
		return nil, err
	}
	if order.Items, err = decodeItems(rawItems); err != nil {
		return nil, err
	}
	if shipmentID.Valid {
		if order.ShipmentID, err = identifier.Parse(shipmentID.String, identifier.Shipment); err != nil {
			return nil, err
		}
	}
	if deletedAt.Valid {
		order.DeletedAt = &deletedAt.Time
	}
	order.Status = domain.Status(status)
	order.PaymentMethod = paymentMethod.String

	return &order, nil
}

func encodeItems(items []domain.Item) (string, error) {
	rows := make([]itemRow, len(items))
	for i, item := range items {
		rows[i] = itemRow{ProductID: item.ProductID.String(), Quantity: item.Quantity, PriceInCents: item.PriceInCents}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeItems(data []byte) ([]domain.Item, error) {
	var rows []itemRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(rows))
	for i, row := range rows {
		id, err := identifier.Parse(row.ProductID, identifier.Product)
		if err != nil {
			return nil, err
		}
		items[i] = domain.Item{ProductID: id, Quantity: row.Quantity, PriceInCents: row.PriceInCents}
	}
	return items, nil
}
