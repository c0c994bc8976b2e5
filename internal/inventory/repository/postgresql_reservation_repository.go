package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
)

const reservationEntity = "stock_reservation"

// reservedLineRow is the stored form of a reserved line.
type reservedLineRow struct {
	ProductID    string `json:"productID"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"priceInCents"`
}

// PostgreSQLReservationRepository handles stock reservation persistence for PostgreSQL
type PostgreSQLReservationRepository struct {
	db *sql.DB
}

// NewPostgreSQLReservationRepository creates a new PostgreSQLReservationRepository
func NewPostgreSQLReservationRepository(db *sql.DB) *PostgreSQLReservationRepository {
	return &PostgreSQLReservationRepository{db: db}
}

// ValidateID returns the reservation of orderID, or nil when the order was not reserved yet.
func (r *PostgreSQLReservationRepository) ValidateID(
	ctx context.Context,
	orderID identifier.ID,
) (*domain.Reservation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT order_id, customer_id, lines, total_amount_in_cents, created_at
			  FROM inventory_reservations WHERE order_id = $1`

	var (
		reservation   domain.Reservation
		rawOrderID    string
		rawCustomerID string
		rawLines      []byte
	)
	err := querier.QueryRowContext(ctx, query, orderID).Scan(&rawOrderID, &rawCustomerID, &rawLines,
		&reservation.TotalAmountInCents, &reservation.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewRepositoryError(reservationEntity, "validate_id", err)
	}

	if reservation.OrderID, err = identifier.Parse(rawOrderID, identifier.Order); err != nil {
		return nil, apperrors.NewRepositoryError(reservationEntity, "validate_id", err)
	}
	if reservation.CustomerID, err = identifier.Parse(rawCustomerID, identifier.Customer); err != nil {
		return nil, apperrors.NewRepositoryError(reservationEntity, "validate_id", err)
	}
	if reservation.Lines, err = decodeLines(rawLines); err != nil {
		return nil, apperrors.NewRepositoryError(reservationEntity, "validate_id", err)
	}

	return &reservation, nil
}

// Save inserts a reservation. A second reservation for the same order reports ErrConflict.
func (r *PostgreSQLReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	querier := database.GetTx(ctx, r.db)

	lines, err := encodeLines(reservation.Lines)
	if err != nil {
		return apperrors.NewRepositoryError(reservationEntity, "save", err)
	}

	query := `INSERT INTO inventory_reservations (order_id, customer_id, lines, total_amount_in_cents, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err = querier.ExecContext(ctx, query, reservation.OrderID, reservation.CustomerID, lines,
		reservation.TotalAmountInCents, reservation.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "order %s already reserved", reservation.OrderID)
		}
		return apperrors.NewRepositoryError(reservationEntity, "save", err)
	}
	return nil
}

func encodeLines(lines []domain.ReservedLine) (string, error) {
	rows := make([]reservedLineRow, len(lines))
	for i, l := range lines {
		rows[i] = reservedLineRow{ProductID: l.ProductID.String(), Quantity: l.Quantity, PriceInCents: l.PriceInCents}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeLines(data []byte) ([]domain.ReservedLine, error) {
	var rows []reservedLineRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	lines := make([]domain.ReservedLine, len(rows))
	for i, row := range rows {
		id, err := identifier.Parse(row.ProductID, identifier.Product)
		if err != nil {
			return nil, err
		}
		lines[i] = domain.ReservedLine{ProductID: id, Quantity: row.Quantity, PriceInCents: row.PriceInCents}
	}
	return lines, nil
}
