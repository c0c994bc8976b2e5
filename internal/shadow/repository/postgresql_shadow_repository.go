// Package repository provides data persistence implementations for shadow records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/domain"
)

// PostgreSQLShadowRepository persists shadow records of one model in one service table
// (e.g., "orders_customers").
type PostgreSQLShadowRepository struct {
	db     *sql.DB
	table  string
	model  identifier.Model
	entity string
}

// NewPostgreSQLShadowRepository creates a new PostgreSQLShadowRepository.
func NewPostgreSQLShadowRepository(db *sql.DB, table string, model identifier.Model) *PostgreSQLShadowRepository {
	return &PostgreSQLShadowRepository{
		db:     db,
		table:  table,
		model:  model,
		entity: string(model) + "_shadow",
	}
}

// ValidateID returns the shadow for id, or nil when it does not exist.
func (r *PostgreSQLShadowRepository) ValidateID(ctx context.Context, id identifier.ID) (*domain.Shadow, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, name, email, created_at, updated_at FROM %s WHERE id = $1`, r.table)

	var (
		shadow domain.Shadow
		rawID  string
	)
	err := querier.QueryRowContext(ctx, query, id).
		Scan(&rawID, &shadow.Name, &shadow.Email, &shadow.CreatedAt, &shadow.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewRepositoryError(r.entity, "validate_id", err)
	}

	shadow.ID, err = identifier.Parse(rawID, r.model)
	if err != nil {
		return nil, apperrors.NewRepositoryError(r.entity, "validate_id", err)
	}

	return &shadow, nil
}

// Save inserts a new shadow. A concurrent insert of the same id reports ErrConflict.
func (r *PostgreSQLShadowRepository) Save(ctx context.Context, shadow *domain.Shadow) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`INSERT INTO %s (id, name, email, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`, r.table)

	_, err := querier.ExecContext(ctx, query, shadow.ID, shadow.Name, shadow.Email, shadow.CreatedAt,
		shadow.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "%s %s already exists", r.model, shadow.ID)
		}
		return apperrors.NewRepositoryError(r.entity, "save", err)
	}

	return nil
}
