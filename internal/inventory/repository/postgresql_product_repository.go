// Package repository provides data persistence implementations for inventory entities.
package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
)

const productEntity = "product"

const productColumns = `id, name, price_in_cents, available_count, unavailable_count, created_by,
			  created_at, updated_at`

// PostgreSQLProductRepository handles product persistence for PostgreSQL
type PostgreSQLProductRepository struct {
	db *sql.DB
}

// NewPostgreSQLProductRepository creates a new PostgreSQLProductRepository
func NewPostgreSQLProductRepository(db *sql.DB) *PostgreSQLProductRepository {
	return &PostgreSQLProductRepository{db: db}
}

// Save inserts a new product
func (r *PostgreSQLProductRepository) Save(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO inventory_products (` + productColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, product.ID, product.Name, product.PriceInCents,
		product.AvailableCount, product.UnavailableCount, product.CreatedBy, product.CreatedAt, product.UpdatedAt)

	return apperrors.NewRepositoryError(productEntity, "save", err)
}

// FindForUpdate returns the products with the given ids and locks their rows until the
// surrounding transaction ends. Rows are locked in id order. Missing ids are omitted.
func (r *PostgreSQLProductRepository) FindForUpdate(
	ctx context.Context,
	ids []identifier.ID,
) ([]*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `SELECT ` + productColumns + `
			  FROM inventory_products
			  WHERE id = ANY($1::uuid[])
			  ORDER BY id
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, apperrors.NewRepositoryError(productEntity, "find_for_update", err)
	}
	defer rows.Close() //nolint:errcheck

	products, err := scanProducts(rows)
	if err != nil {
		return nil, apperrors.NewRepositoryError(productEntity, "find_for_update", err)
	}
	return products, nil
}

// UpdateStock writes the stock counters of product.
func (r *PostgreSQLProductRepository) UpdateStock(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE inventory_products
			  SET available_count = $1, unavailable_count = $2, updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, product.AvailableCount, product.UnavailableCount,
		product.UpdatedAt, product.ID)
	if err != nil {
		return apperrors.NewRepositoryError(productEntity, "update_stock", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewRepositoryError(productEntity, "update_stock", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Search returns one page of products ordered by name. TotalCount covers the whole catalog.
func (r *PostgreSQLProductRepository) Search(
	ctx context.Context,
	page database.Page,
) (*database.PagedResult[*domain.Product], error) {
	querier := database.GetTx(ctx, r.db)
	page = page.Normalize()

	var total int
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_products`).Scan(&total); err != nil {
		return nil, apperrors.NewRepositoryError(productEntity, "search", err)
	}

	query := `SELECT ` + productColumns + `
			  FROM inventory_products
			  ORDER BY name ASC, id ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, apperrors.NewRepositoryError(productEntity, "search", err)
	}
	defer rows.Close() //nolint:errcheck

	products, err := scanProducts(rows)
	if err != nil {
		return nil, apperrors.NewRepositoryError(productEntity, "search", err)
	}

	return &database.PagedResult[*domain.Product]{
		Items:      products,
		TotalCount: total,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0)
	for rows.Next() {
		var (
			product   domain.Product
			rawID     string
			createdBy string
		)
		err := rows.Scan(&rawID, &product.Name, &product.PriceInCents, &product.AvailableCount,
			&product.UnavailableCount, &createdBy, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}

		if product.ID, err = identifier.Parse(rawID, identifier.Product); err != nil {
			return nil, err
		}
		if product.CreatedBy, err = identifier.Parse(createdBy, identifier.Employee); err != nil {
			return nil, err
		}

		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
