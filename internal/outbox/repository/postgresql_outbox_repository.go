// Package repository provides data persistence implementations for outbox entities.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/outbox/domain"
)

const entity = "outbox_event"

// PostgreSQLOutboxEventRepository handles outbox event persistence for PostgreSQL. Every
// service owns its own outbox table.
type PostgreSQLOutboxEventRepository struct {
	db    *sql.DB
	table string
}

// NewPostgreSQLOutboxEventRepository creates a new PostgreSQLOutboxEventRepository on table
// (e.g., "orders_outbox_events").
func NewPostgreSQLOutboxEventRepository(db *sql.DB, table string) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{
		db:    db,
		table: table,
	}
}

// Create inserts a new outbox event
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	headers, err := json.Marshal(event.Headers)
	if err != nil {
		return apperrors.NewRepositoryError(entity, "create", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, event_type, aggregate_key, payload, headers, status, retries,
			  last_error, processed_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`, r.table)

	_, err = querier.ExecContext(ctx, query, event.ID, event.EventType, event.AggregateKey, event.Payload,
		string(headers), event.Status, event.Retries, event.LastError, event.ProcessedAt)

	return apperrors.NewRepositoryError(entity, "create", err)
}

// GetPendingEvents retrieves pending events with limit, locking them for the caller's
// transaction. Concurrent relays skip locked rows.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, event_type, aggregate_key, payload, headers, status, retries, last_error,
			  processed_at, created_at, updated_at
			  FROM %s
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`, r.table)

	rows, err := querier.QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, apperrors.NewRepositoryError(entity, "get_pending", err)
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		var (
			event   domain.OutboxEvent
			headers []byte
		)

		err := rows.Scan(&event.ID, &event.EventType, &event.AggregateKey, &event.Payload, &headers,
			&event.Status, &event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return nil, apperrors.NewRepositoryError(entity, "get_pending", err)
		}

		if len(headers) > 0 {
			if err := json.Unmarshal(headers, &event.Headers); err != nil {
				return nil, apperrors.NewRepositoryError(entity, "get_pending", err)
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError(entity, "get_pending", err)
	}

	return events, nil
}

// Update updates the delivery state of an outbox event
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`UPDATE %s
			  SET status = $1, retries = $2, last_error = $3, processed_at = $4, updated_at = NOW()
			  WHERE id = $5`, r.table)

	_, err := querier.ExecContext(ctx, query, event.Status, event.Retries, event.LastError,
		event.ProcessedAt, event.ID)

	return apperrors.NewRepositoryError(entity, "update", err)
}
