// Package repository provides data persistence implementations for notifications.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/domain"
)

const notificationEntity = "notification"

// PostgreSQLNotificationRepository handles notification persistence for PostgreSQL
type PostgreSQLNotificationRepository struct {
	db *sql.DB
}

// NewPostgreSQLNotificationRepository creates a new PostgreSQLNotificationRepository
func NewPostgreSQLNotificationRepository(db *sql.DB) *PostgreSQLNotificationRepository {
	return &PostgreSQLNotificationRepository{db: db}
}

// Save records a sent notification. A second notification of the same kind for the same
// order reports ErrConflict.
func (r *PostgreSQLNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO notifications_notifications (id, order_id, customer_id, kind, recipient, sent_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(ctx, query, n.ID, n.OrderID, n.CustomerID, string(n.Kind), n.Recipient, n.SentAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "%s already sent for order %s", n.Kind, n.OrderID)
		}
		return apperrors.NewRepositoryError(notificationEntity, "save", err)
	}
	return nil
}

// ValidateID returns the notification of kind sent for orderID, or nil when none was sent.
func (r *PostgreSQLNotificationRepository) ValidateID(
	ctx context.Context,
	orderID identifier.ID,
	kind domain.Kind,
) (*domain.Notification, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, customer_id, kind, recipient, sent_at
			  FROM notifications_notifications
			  WHERE order_id = $1 AND kind = $2`

	var (
		n             domain.Notification
		rawID         string
		rawOrderID    string
		rawCustomerID string
		rawKind       string
	)
	err := querier.QueryRowContext(ctx, query, orderID, string(kind)).
		Scan(&rawID, &rawOrderID, &rawCustomerID, &rawKind, &n.Recipient, &n.SentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewRepositoryError(notificationEntity, "validate_id", err)
	}

	if n.ID, err = identifier.Parse(rawID, identifier.Notification); err != nil {
		return nil, apperrors.NewRepositoryError(notificationEntity, "validate_id", err)
	}
	if n.OrderID, err = identifier.Parse(rawOrderID, identifier.Order); err != nil {
		return nil, apperrors.NewRepositoryError(notificationEntity, "validate_id", err)
	}
	if n.CustomerID, err = identifier.Parse(rawCustomerID, identifier.Customer); err != nil {
		return nil, apperrors.NewRepositoryError(notificationEntity, "validate_id", err)
	}
	n.Kind = domain.Kind(rawKind)

	return &n, nil
}
