package usecase

import (
	"context"
	"strings"
	"time"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
)

// Credentials identify an account by e-mail and password.
type Credentials struct {
	Email    string
	Password string
}

// Session is an issued access token.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     *domain.Account
}

// AuthenticateAccount exchanges credentials for a signed access token.
type AuthenticateAccount struct {
	executor  *operation.Executor
	repo      AccountByEmailFinder
	passwords authService.PasswordService
	tokens    authService.TokenService
	kind      domain.Kind
}

// NewAuthenticateAccount creates an AuthenticateAccount for accounts of kind.
func NewAuthenticateAccount(
	executor *operation.Executor,
	repo AccountByEmailFinder,
	passwords authService.PasswordService,
	tokens authService.TokenService,
	kind domain.Kind,
) *AuthenticateAccount {
	return &AuthenticateAccount{
		executor:  executor,
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		kind:      kind,
	}
}

// Execute verifies the credentials. An unknown e-mail and a wrong password fail the same
// way with ErrInvalidCredentials.
func (uc *AuthenticateAccount) Execute(ctx context.Context, in Credentials) result.Result[*Session] {
	return operation.Execute(ctx, uc.executor, "authenticate_"+string(uc.kind),
		func(ctx context.Context) (*Session, error) {
			account, err := uc.repo.FindByEmail(ctx, uc.kind, strings.TrimSpace(strings.ToLower(in.Email)))
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNotFound) {
					return nil, authDomain.ErrInvalidCredentials
				}
				return nil, err
			}

			if !uc.passwords.Compare(in.Password, account.PasswordHash) {
				return nil, authDomain.ErrInvalidCredentials
			}

			token, expiresAt, err := uc.tokens.Issue(account.ID, account.Kind.Role())
			if err != nil {
				return nil, err
			}

			return &Session{AccessToken: token, ExpiresAt: expiresAt, Account: account}, nil
		})
}
