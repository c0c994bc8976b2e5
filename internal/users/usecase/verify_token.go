package usecase

import (
	"context"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
)

// VerifyToken resolves an access token to its principal. It never changes state.
type VerifyToken struct {
	executor *operation.Executor
	tokens   authService.TokenService
}

// NewVerifyToken creates a VerifyToken.
func NewVerifyToken(executor *operation.Executor, tokens authService.TokenService) *VerifyToken {
	return &VerifyToken{executor: executor, tokens: tokens}
}

// Execute verifies token. Expired, forged and malformed tokens fail with ErrInvalidToken.
func (uc *VerifyToken) Execute(ctx context.Context, token string) result.Result[*authDomain.Principal] {
	return operation.Execute(ctx, uc.executor, "verify_token",
		func(ctx context.Context) (*authDomain.Principal, error) {
			return uc.tokens.Verify(token)
		})
}

// Verify adapts VerifyToken to the authentication middleware.
func (uc *VerifyToken) Verify(ctx context.Context, token string) (*authDomain.Principal, error) {
	return uc.Execute(ctx, token).Unwrap()
}
