package usecase

import (
	"context"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
)

// GetAccount retrieves an account of one kind by ID.
type GetAccount struct {
	executor *operation.Executor
	repo     AccountByIDFinder
	kind     domain.Kind
}

// NewGetAccount creates a GetAccount for accounts of kind.
func NewGetAccount(executor *operation.Executor, repo AccountByIDFinder, kind domain.Kind) *GetAccount {
	return &GetAccount{executor: executor, repo: repo, kind: kind}
}

// Execute returns the account or ErrAccountNotFound.
func (uc *GetAccount) Execute(ctx context.Context, id identifier.ID) result.Result[*domain.Account] {
	return operation.Execute(ctx, uc.executor, "get_"+string(uc.kind),
		func(ctx context.Context) (*domain.Account, error) {
			return uc.repo.FindByID(ctx, uc.kind, id)
		})
}
