package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
)

var billingRowColumns = []string{
	"id", "order_id", "customer_id", "external_billing_id", "payment_url", "amount_in_cents", "status",
	"payment_method", "paid_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func newBilling() *domain.Billing {
	now := time.Now().UTC()
	return &domain.Billing{
		ID:                identifier.New(identifier.Billing),
		OrderID:           identifier.New(identifier.Order),
		CustomerID:        identifier.New(identifier.Customer),
		ExternalBillingID: "bill_1",
		PaymentURL:        "https://pay.local/bill_1",
		AmountInCents:     2500,
		Status:            domain.StatusAwaitingPayment,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func billingRow(b *domain.Billing) *sqlmock.Rows {
	var method any
	if b.PaymentMethod != "" {
		method = b.PaymentMethod
	}
	var paidAt any
	if b.PaidAt != nil {
		paidAt = *b.PaidAt
	}
	return sqlmock.NewRows(billingRowColumns).AddRow(b.ID.String(), b.OrderID.String(), b.CustomerID.String(),
		b.ExternalBillingID, b.PaymentURL, b.AmountInCents, string(b.Status), method, paidAt, b.CreatedAt, b.UpdatedAt)
}

func TestPostgreSQLBillingRepository_Save(t *testing.T) {
	ctx := context.Background()
	billing := newBilling()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO payments_billings").
			WithArgs(billing.ID.String(), billing.OrderID.String(), billing.CustomerID.String(), "bill_1",
				"https://pay.local/bill_1", int64(2500), "AWAITING_PAYMENT", billing.CreatedAt, billing.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLBillingRepository(db).Save(ctx, billing))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_OrderAlreadyBilled", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO payments_billings").WillReturnError(&pq.Error{Code: "23505"})

		err := NewPostgreSQLBillingRepository(db).Save(ctx, billing)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLBillingRepository_ValidateID(t *testing.T) {
	ctx := context.Background()
	billing := newBilling()

	t.Run("Success_Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM payments_billings WHERE order_id = \\$1").
			WithArgs(billing.OrderID.String()).
			WillReturnRows(billingRow(billing))

		found, err := NewPostgreSQLBillingRepository(db).ValidateID(ctx, billing.OrderID)

		require.NoError(t, err)
		assert.Equal(t, billing.ID, found.ID)
		assert.Equal(t, domain.StatusAwaitingPayment, found.Status)
		assert.Nil(t, found.PaidAt)
	})

	t.Run("Success_Absent", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM payments_billings").WillReturnError(sql.ErrNoRows)

		found, err := NewPostgreSQLBillingRepository(db).ValidateID(ctx, billing.OrderID)

		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM payments_billings").WillReturnError(errors.New("broken pipe"))

		_, err := NewPostgreSQLBillingRepository(db).ValidateID(ctx, billing.OrderID)
		assert.ErrorIs(t, err, apperrors.ErrRepository)
	})
}

func TestPostgreSQLBillingRepository_FindByExternalIDForUpdate(t *testing.T) {
	ctx := context.Background()
	billing := newBilling()
	paidAt := time.Now().UTC()
	billing.Status = domain.StatusPaid
	billing.PaymentMethod = "pix"
	billing.PaidAt = &paidAt

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("WHERE external_billing_id = \\$1\\s+FOR UPDATE").
			WithArgs("bill_1").
			WillReturnRows(billingRow(billing))

		found, err := NewPostgreSQLBillingRepository(db).FindByExternalIDForUpdate(ctx, "bill_1")

		require.NoError(t, err)
		assert.Equal(t, "pix", found.PaymentMethod)
		require.NotNil(t, found.PaidAt)
		assert.Equal(t, paidAt, *found.PaidAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM payments_billings").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLBillingRepository(db).FindByExternalIDForUpdate(ctx, "bill_x")
		assert.ErrorIs(t, err, domain.ErrBillingNotFound)
	})
}

func TestPostgreSQLBillingRepository_UpdatePayment(t *testing.T) {
	ctx := context.Background()
	billing := newBilling()
	billing.MarkPaid(domain.Payment{PaymentMethod: "boleto", PaidAt: time.Now().UTC()})

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE payments_billings").
			WithArgs("PAID", "boleto", *billing.PaidAt, billing.UpdatedAt, billing.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLBillingRepository(db).UpdatePayment(ctx, billing))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE payments_billings").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLBillingRepository(db).UpdatePayment(ctx, billing)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLBillingRepository_Search(t *testing.T) {
	ctx := context.Background()
	billing := newBilling()
	maxAmount := int64(3000)

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments_billings WHERE customer_id = \$1 AND status = \$2 ` +
		`AND amount_in_cents <= \$3`).
		WithArgs(billing.CustomerID.String(), "AWAITING_PAYMENT", maxAmount).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs(billing.CustomerID.String(), "AWAITING_PAYMENT", maxAmount, 50, 0).
		WillReturnRows(billingRow(billing))

	page, err := NewPostgreSQLBillingRepository(db).Search(ctx, billing.CustomerID,
		domain.Filters{Status: domain.StatusAwaitingPayment, MaxAmount: &maxAmount}, database.Page{})

	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, billing.ID, page.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
