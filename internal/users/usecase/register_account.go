package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// RegisterInput contains the input data for account registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate validates the registration input using jellydator/validation
func (in RegisterInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&in.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.DefaultPasswordStrength,
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterAccount registers a customer or an employee and announces it with
// customer.created or employee.created.
type RegisterAccount struct {
	executor  *operation.Executor
	txManager database.TxManager
	repo      AccountSaver
	emitter   EventEmitter
	passwords authService.PasswordService
	kind      domain.Kind
	now       func() time.Time
}

// NewRegisterAccount creates a RegisterAccount for accounts of kind.
func NewRegisterAccount(
	executor *operation.Executor,
	txManager database.TxManager,
	repo AccountSaver,
	emitter EventEmitter,
	passwords authService.PasswordService,
	kind domain.Kind,
) *RegisterAccount {
	return &RegisterAccount{
		executor:  executor,
		txManager: txManager,
		repo:      repo,
		emitter:   emitter,
		passwords: passwords,
		kind:      kind,
		now:       time.Now,
	}
}

// Execute validates the input, stores the account and enqueues its created event in
// the same transaction.
func (uc *RegisterAccount) Execute(ctx context.Context, in RegisterInput) result.Result[*domain.Account] {
	return operation.Execute(ctx, uc.executor, "register_"+string(uc.kind),
		func(ctx context.Context) (*domain.Account, error) {
			if err := in.Validate(); err != nil {
				return nil, err
			}

			hash, err := uc.passwords.Hash(in.Password)
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to hash password")
			}

			now := uc.now().UTC()
			account := &domain.Account{
				ID:           identifier.New(uc.kind.Model()),
				Kind:         uc.kind,
				Name:         strings.TrimSpace(in.Name),
				Email:        strings.TrimSpace(strings.ToLower(in.Email)),
				PasswordHash: hash,
				CreatedAt:    now,
				UpdatedAt:    now,
			}

			err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
				if err := uc.repo.Save(ctx, account); err != nil {
					return err
				}
				return uc.emitter.Emit(ctx, account.CreatedEvent())
			})
			if err != nil {
				return nil, err
			}

			return account, nil
		})
}
