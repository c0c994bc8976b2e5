// Package repository provides data persistence implementations for shipments.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
)

const shipmentEntity = "shipment"

const shipmentColumns = `id, order_id, customer_id, status, delivered_at, created_at, updated_at`

// PostgreSQLShipmentRepository handles shipment persistence for PostgreSQL
type PostgreSQLShipmentRepository struct {
	db *sql.DB
}

// NewPostgreSQLShipmentRepository creates a new PostgreSQLShipmentRepository
func NewPostgreSQLShipmentRepository(db *sql.DB) *PostgreSQLShipmentRepository {
	return &PostgreSQLShipmentRepository{db: db}
}

// Save inserts a new shipment. A second shipment for the same order reports ErrConflict.
func (r *PostgreSQLShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO shipments_shipments (id, order_id, customer_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(ctx, query, shipment.ID, shipment.OrderID, shipment.CustomerID,
		string(shipment.Status), shipment.CreatedAt, shipment.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "order %s already shipped", shipment.OrderID)
		}
		return apperrors.NewRepositoryError(shipmentEntity, "save", err)
	}
	return nil
}

// ValidateID returns the shipment of orderID, or nil when none was created yet.
func (r *PostgreSQLShipmentRepository) ValidateID(ctx context.Context, orderID identifier.ID) (*domain.Shipment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + shipmentColumns + ` FROM shipments_shipments WHERE order_id = $1`

	shipment, err := scanShipment(querier.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewRepositoryError(shipmentEntity, "validate_id", err)
	}
	return shipment, nil
}

// FindByIDForUpdate returns the shipment and locks its row until the surrounding
// transaction ends.
func (r *PostgreSQLShipmentRepository) FindByIDForUpdate(
	ctx context.Context,
	id identifier.ID,
) (*domain.Shipment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + shipmentColumns + ` FROM shipments_shipments WHERE id = $1 FOR UPDATE`

	shipment, err := scanShipment(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(domain.ErrShipmentNotFound, "shipment %s", id)
		}
		return nil, apperrors.NewRepositoryError(shipmentEntity, "find_by_id", err)
	}
	return shipment, nil
}

// UpdateDelivery writes the delivery columns of shipment.
func (r *PostgreSQLShipmentRepository) UpdateDelivery(ctx context.Context, shipment *domain.Shipment) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE shipments_shipments SET status = $1, delivered_at = $2, updated_at = $3 WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, string(shipment.Status), shipment.DeliveredAt,
		shipment.UpdatedAt, shipment.ID)
	if err != nil {
		return apperrors.NewRepositoryError(shipmentEntity, "update_delivery", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewRepositoryError(shipmentEntity, "update_delivery", err)
	}
	if affected == 0 {
		return apperrors.Wrapf(domain.ErrShipmentNotFound, "shipment %s", shipment.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*domain.Shipment, error) {
	var (
		shipment      domain.Shipment
		rawID         string
		rawOrderID    string
		rawCustomerID string
		status        string
		deliveredAt   sql.NullTime
	)
	err := row.Scan(&rawID, &rawOrderID, &rawCustomerID, &status, &deliveredAt, &shipment.CreatedAt,
		&shipment.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if shipment.ID, err = identifier.Parse(rawID, identifier.Shipment); err != nil {
		return nil, err
	}
	if shipment.OrderID, err = identifier.Parse(rawOrderID, identifier.Order); err != nil {
		return nil, err
	}
	if shipment.CustomerID, err = identifier.Parse(rawCustomerID, identifier.Customer); err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		shipment.DeliveredAt = &deliveredAt.Time
	}
	shipment.Status = domain.Status(status)

	return &shipment, nil
}
