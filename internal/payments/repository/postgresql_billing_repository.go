// Package repository provides data persistence implementations for billings.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
)

const billingEntity = "billing"

const billingColumns = `id, order_id, customer_id, external_billing_id, payment_url, amount_in_cents, status,
			  payment_method, paid_at, created_at, updated_at`

// PostgreSQLBillingRepository handles billing persistence for PostgreSQL
type PostgreSQLBillingRepository struct {
	db *sql.DB
}

// NewPostgreSQLBillingRepository creates a new PostgreSQLBillingRepository
func NewPostgreSQLBillingRepository(db *sql.DB) *PostgreSQLBillingRepository {
	return &PostgreSQLBillingRepository{db: db}
}

// Save inserts a new billing. A second billing for the same order reports ErrConflict.
func (r *PostgreSQLBillingRepository) Save(ctx context.Context, billing *domain.Billing) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO payments_billings (id, order_id, customer_id, external_billing_id, payment_url,
			  amount_in_cents, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(ctx, query, billing.ID, billing.OrderID, billing.CustomerID,
		billing.ExternalBillingID, billing.PaymentURL, billing.AmountInCents, string(billing.Status),
		billing.CreatedAt, billing.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "order %s already billed", billing.OrderID)
		}
		return apperrors.NewRepositoryError(billingEntity, "save", err)
	}
	return nil
}

// ValidateID returns the billing of orderID, or nil when the order was not billed yet.
func (r *PostgreSQLBillingRepository) ValidateID(ctx context.Context, orderID identifier.ID) (*domain.Billing, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + billingColumns + ` FROM payments_billings WHERE order_id = $1`

	billing, err := scanBilling(querier.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewRepositoryError(billingEntity, "validate_id", err)
	}
	return billing, nil
}

// FindByExternalIDForUpdate returns the billing issued under the gateway id externalID
// and locks its row until the surrounding transaction ends.
func (r *PostgreSQLBillingRepository) FindByExternalIDForUpdate(
	ctx context.Context,
	externalID string,
) (*domain.Billing, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + billingColumns + `
			  FROM payments_billings
			  WHERE external_billing_id = $1
			  FOR UPDATE`

	billing, err := scanBilling(querier.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(domain.ErrBillingNotFound, "external billing %s", externalID)
		}
		return nil, apperrors.NewRepositoryError(billingEntity, "find_by_external_id", err)
	}
	return billing, nil
}

// UpdatePayment writes the payment columns of billing.
func (r *PostgreSQLBillingRepository) UpdatePayment(ctx context.Context, billing *domain.Billing) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE payments_billings
			  SET status = $1, payment_method = $2, paid_at = $3, updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(ctx, query, string(billing.Status), billing.PaymentMethod, billing.PaidAt,
		billing.UpdatedAt, billing.ID)
	if err != nil {
		return apperrors.NewRepositoryError(billingEntity, "update_payment", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewRepositoryError(billingEntity, "update_payment", err)
	}
	if affected == 0 {
		return apperrors.Wrapf(domain.ErrBillingNotFound, "billing %s", billing.ID)
	}
	return nil
}

// Search returns one page of the billings of customerID matching filters, newest first.
// TotalCount counts every matching billing regardless of the page.
func (r *PostgreSQLBillingRepository) Search(
	ctx context.Context,
	customerID identifier.ID,
	filters domain.Filters,
	page database.Page,
) (*database.PagedResult[*domain.Billing], error) {
	querier := database.GetTx(ctx, r.db)
	page = page.Normalize()

	where, args := buildFilters(customerID, filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM payments_billings WHERE ` + where
	if err := querier.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, apperrors.NewRepositoryError(billingEntity, "search", err)
	}

	n := len(args)
	query := `SELECT ` + billingColumns + `
			  FROM payments_billings
			  WHERE ` + where + `
			  ORDER BY created_at DESC, id DESC
			  LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	rows, err := querier.QueryContext(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, apperrors.NewRepositoryError(billingEntity, "search", err)
	}
	defer rows.Close() //nolint:errcheck

	billings := make([]*domain.Billing, 0)
	for rows.Next() {
		billing, err := scanBilling(rows)
		if err != nil {
			return nil, apperrors.NewRepositoryError(billingEntity, "search", err)
		}
		billings = append(billings, billing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError(billingEntity, "search", err)
	}

	return &database.PagedResult[*domain.Billing]{
		Items:      billings,
		TotalCount: total,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

func buildFilters(customerID identifier.ID, f domain.Filters) (string, []any) {
	conditions := []string{"customer_id = $1"}
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
		add("amount_in_cents >=", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("amount_in_cents <=", *f.MaxAmount)
	}
	if f.PaymentMethod != "" {
		add("payment_method =", f.PaymentMethod)
	}

	return strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBilling(row rowScanner) (*domain.Billing, error) {
	var (
		billing       domain.Billing
		rawID         string
		rawOrderID    string
		rawCustomerID string
		status        string
		paymentMethod sql.NullString
		paidAt        sql.NullTime
	)
	err := row.Scan(&rawID, &rawOrderID, &rawCustomerID, &billing.ExternalBillingID, &billing.PaymentURL,
		&billing.AmountInCents, &status, &paymentMethod, &paidAt, &billing.CreatedAt, &billing.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if billing.ID, err = identifier.Parse(rawID, identifier.Billing); err != nil {
		return nil, err
	}
	if billing.OrderID, err = identifier.Parse(rawOrderID, identifier.Order); err != nil {
		return nil, err
	}
	if billing.CustomerID, err = identifier.Parse(rawCustomerID, identifier.Customer); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		billing.PaidAt = &paidAt.Time
	}
	billing.Status = domain.Status(status)
	billing.PaymentMethod = paymentMethod.String

	return &billing, nil
}
