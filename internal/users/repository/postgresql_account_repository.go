// Package repository provides data persistence implementations for account entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
)

const entity = "account"

// PostgreSQLAccountRepository handles account persistence for PostgreSQL
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccountRepository creates a new PostgreSQLAccountRepository
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{
		db: db,
	}
}

// Save inserts a new account. A duplicate email for the same kind reports ErrAccountAlreadyExists.
func (r *PostgreSQLAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users_accounts (id, kind, name, email, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(ctx, query, account.ID, account.Kind, account.Name, account.Email,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrAccountAlreadyExists
		}
		return apperrors.NewRepositoryError(entity, "save", err)
	}
	return nil
}

// FindByID retrieves an account of kind by ID
func (r *PostgreSQLAccountRepository) FindByID(
	ctx context.Context,
	kind domain.Kind,
	id identifier.ID,
) (*domain.Account, error) {
	query := `SELECT id, kind, name, email, password_hash, created_at, updated_at
			  FROM users_accounts WHERE kind = $1 AND id = $2`

	return r.findOne(ctx, "find_by_id", query, kind, id)
}

// FindByEmail retrieves an account of kind by email
func (r *PostgreSQLAccountRepository) FindByEmail(
	ctx context.Context,
	kind domain.Kind,
	email string,
) (*domain.Account, error) {
	query := `SELECT id, kind, name, email, password_hash, created_at, updated_at
			  FROM users_accounts WHERE kind = $1 AND email = $2`

	return r.findOne(ctx, "find_by_email", query, kind, email)
}

func (r *PostgreSQLAccountRepository) findOne(
	ctx context.Context,
	op string,
	query string,
	kind domain.Kind,
	arg any,
) (*domain.Account, error) {
	var (
		account domain.Account
		rawID   string
	)
	querier := database.GetTx(ctx, r.db)

	err := querier.QueryRowContext(ctx, query, kind, arg).Scan(
		&rawID, &account.Kind, &account.Name, &account.Email, &account.PasswordHash,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, apperrors.NewRepositoryError(entity, op, err)
	}

	account.ID, err = identifier.Parse(rawID, account.Kind.Model())
	if err != nil {
		return nil, apperrors.NewRepositoryError(entity, op, err)
	}

	return &account, nil
}
