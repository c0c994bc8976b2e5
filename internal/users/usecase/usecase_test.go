package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
	databaseMocks "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database/mocks"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	outboxMocks "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/outbox/mocks"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
)

// mockAccountRepository is a mock implementation of the account repository interfaces.
type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) FindByEmail(
	ctx context.Context,
	kind domain.Kind,
	email string,
) (*domain.Account, error) {
	args := m.Called(ctx, kind, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) FindByID(
	ctx context.Context,
	kind domain.Kind,
	id identifier.ID,
) (*domain.Account, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Compare(plain, hash string) bool {
	args := m.Called(plain, hash)
	return args.Bool(0)
}

// mockTokenService is a mock implementation of TokenService.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Issue(subject identifier.ID, role authDomain.Role) (string, time.Time, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) Verify(token string) (*authDomain.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

func newExecutor() *operation.Executor {
	return operation.NewExecutor("users", zap.NewNop(), nil)
}

func TestRegisterAccount_Execute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	input := RegisterInput{Name: " John Doe ", Email: "John@Example.com", Password: "SecurePass123"}

	setup := func(kind domain.Kind) (*RegisterAccount, *databaseMocks.MockTxManager, *mockAccountRepository,
		*outboxMocks.MockEmitter, *mockPasswordService) {
		txManager := &databaseMocks.MockTxManager{}
		repo := &mockAccountRepository{}
		emitter := &outboxMocks.MockEmitter{}
		passwords := &mockPasswordService{}
		uc := NewRegisterAccount(newExecutor(), txManager, repo, emitter, passwords, kind)
		uc.now = func() time.Time { return now }
		return uc, txManager, repo, emitter, passwords
	}

	t.Run("Success_CustomerEmitsCustomerCreated", func(t *testing.T) {
		uc, txManager, repo, emitter, passwords := setup(domain.KindCustomer)

		passwords.On("Hash", "SecurePass123").Return("hashed", nil).Once()
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
			return a.Name == "John Doe" && a.Email == "john@example.com" && a.PasswordHash == "hashed" &&
				a.Kind == domain.KindCustomer && a.ID.Model() == identifier.Customer
		})).Return(nil).Once()
		emitter.On("Emit", mock.Anything, mock.MatchedBy(func(p []events.Payload) bool {
			if len(p) != 1 {
				return false
			}
			payload, ok := p[0].(events.CustomerCreatedPayload)
			return ok && payload.Email == "john@example.com" && payload.CreatedAt.Equal(now)
		})).Return(nil).Once()

		r := uc.Execute(ctx, input)

		require.True(t, r.IsSuccess(), "%v", r.Err())
		assert.Equal(t, "john@example.com", r.Value().Email)
		assert.Equal(t, now, r.Value().CreatedAt)
		txManager.AssertExpectations(t)
		repo.AssertExpectations(t)
		emitter.AssertExpectations(t)
	})

	t.Run("Success_EmployeeEmitsEmployeeCreated", func(t *testing.T) {
		uc, txManager, repo, emitter, passwords := setup(domain.KindEmployee)

		passwords.On("Hash", mock.Anything).Return("hashed", nil).Once()
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		emitter.On("Emit", mock.Anything, mock.MatchedBy(func(p []events.Payload) bool {
			return len(p) == 1 && p[0].EventType() == events.EmployeeCreated
		})).Return(nil).Once()

		r := uc.Execute(ctx, input)

		require.True(t, r.IsSuccess())
		assert.Equal(t, identifier.Employee, r.Value().ID.Model())
		emitter.AssertExpectations(t)
	})

	t.Run("Error_ValidationFailsBeforeAnyWork", func(t *testing.T) {
		uc, txManager, _, _, passwords := setup(domain.KindCustomer)

		r := uc.Execute(ctx, RegisterInput{Name: "John", Email: "not-an-email", Password: "weak"})

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), apperrors.ErrInvalidInput)
		passwords.AssertNotCalled(t, "Hash", mock.Anything)
		txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("Error_DuplicateEmailEmitsNothing", func(t *testing.T) {
		uc, txManager, repo, emitter, passwords := setup(domain.KindCustomer)

		passwords.On("Hash", mock.Anything).Return("hashed", nil).Once()
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(domain.ErrAccountAlreadyExists).Once()

		r := uc.Execute(ctx, input)

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), apperrors.ErrConflict)
		emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	})

	t.Run("Error_OutboxFaultFailsRegistration", func(t *testing.T) {
		uc, txManager, repo, emitter, passwords := setup(domain.KindCustomer)
		fault := apperrors.NewRepositoryError("outbox_event", "create", errors.New("connection reset"))

		passwords.On("Hash", mock.Anything).Return("hashed", nil).Once()
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		emitter.On("Emit", mock.Anything, mock.Anything).Return(fault).Once()

		r := uc.Execute(ctx, input)

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), apperrors.ErrRepository)
	})
}

func TestAuthenticateAccount_Execute(t *testing.T) {
	ctx := context.Background()
	account := &domain.Account{
		ID:           identifier.New(identifier.Customer),
		Kind:         domain.KindCustomer,
		Email:        "ana@example.com",
		PasswordHash: "hashed",
	}
	expiresAt := time.Now().Add(time.Hour)

	t.Run("Success", func(t *testing.T) {
		repo := &mockAccountRepository{}
		passwords := &mockPasswordService{}
		tokens := &mockTokenService{}
		repo.On("FindByEmail", mock.Anything, domain.KindCustomer, "ana@example.com").Return(account, nil).Once()
		passwords.On("Compare", "SecurePass123", "hashed").Return(true).Once()
		tokens.On("Issue", account.ID, authDomain.RoleCustomer).Return("signed", expiresAt, nil).Once()

		uc := NewAuthenticateAccount(newExecutor(), repo, passwords, tokens, domain.KindCustomer)
		r := uc.Execute(ctx, Credentials{Email: " ANA@example.com", Password: "SecurePass123"})

		require.True(t, r.IsSuccess())
		assert.Equal(t, "signed", r.Value().AccessToken)
		assert.Equal(t, expiresAt, r.Value().ExpiresAt)
		assert.Same(t, account, r.Value().Account)
	})

	t.Run("Error_UnknownEmail", func(t *testing.T) {
		repo := &mockAccountRepository{}
		tokens := &mockTokenService{}
		repo.On("FindByEmail", mock.Anything, domain.KindEmployee, "ana@example.com").
			Return(nil, domain.ErrAccountNotFound).Once()

		uc := NewAuthenticateAccount(newExecutor(), repo, &mockPasswordService{}, tokens, domain.KindEmployee)
		r := uc.Execute(ctx, Credentials{Email: "ana@example.com", Password: "SecurePass123"})

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), authDomain.ErrInvalidCredentials)
		assert.ErrorIs(t, r.Err(), apperrors.ErrUnauthorized)
		tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		repo := &mockAccountRepository{}
		passwords := &mockPasswordService{}
		repo.On("FindByEmail", mock.Anything, domain.KindCustomer, "ana@example.com").Return(account, nil).Once()
		passwords.On("Compare", "wrong", "hashed").Return(false).Once()

		uc := NewAuthenticateAccount(newExecutor(), repo, passwords, &mockTokenService{}, domain.KindCustomer)
		r := uc.Execute(ctx, Credentials{Email: "ana@example.com", Password: "wrong"})

		assert.ErrorIs(t, r.Err(), authDomain.ErrInvalidCredentials)
	})

	t.Run("Error_RepositoryFaultIsNotMasked", func(t *testing.T) {
		repo := &mockAccountRepository{}
		repo.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewRepositoryError("account", "find_by_email", errors.New("timeout"))).Once()

		uc := NewAuthenticateAccount(newExecutor(), repo, &mockPasswordService{}, &mockTokenService{},
			domain.KindCustomer)
		r := uc.Execute(ctx, Credentials{Email: "ana@example.com", Password: "x"})

		assert.ErrorIs(t, r.Err(), apperrors.ErrRepository)
		assert.NotErrorIs(t, r.Err(), apperrors.ErrUnauthorized)
	})
}

func TestVerifyToken_Execute(t *testing.T) {
	ctx := context.Background()
	subject := identifier.New(identifier.Customer)

	t.Run("Success", func(t *testing.T) {
		tokens, err := authService.NewTokenService("test-secret", time.Hour)
		require.NoError(t, err)
		token, _, err := tokens.Issue(subject, authDomain.RoleCustomer)
		require.NoError(t, err)

		principal, err := NewVerifyToken(newExecutor(), tokens).Verify(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, subject, principal.SubjectID)
		assert.Equal(t, authDomain.RoleCustomer, principal.Role)
	})

	t.Run("Error_ExpiredTokenIsUnauthorized", func(t *testing.T) {
		tokens, err := authService.NewTokenService("test-secret", -time.Minute)
		require.NoError(t, err)
		token, _, err := tokens.Issue(subject, authDomain.RoleCustomer)
		require.NoError(t, err)

		r := NewVerifyToken(newExecutor(), tokens).Execute(ctx, token)

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), authDomain.ErrInvalidToken)
		assert.ErrorIs(t, r.Err(), apperrors.ErrUnauthorized)
	})
}

func TestGetAccount_Execute(t *testing.T) {
	ctx := context.Background()
	id := identifier.New(identifier.Customer)

	repo := &mockAccountRepository{}
	repo.On("FindByID", mock.Anything, domain.KindCustomer, id).Return(&domain.Account{ID: id}, nil).Once()
	repo.On("FindByID", mock.Anything, domain.KindCustomer, mock.Anything).Return(nil, domain.ErrAccountNotFound)

	uc := NewGetAccount(newExecutor(), repo, domain.KindCustomer)

	r := uc.Execute(ctx, id)
	require.True(t, r.IsSuccess())
	assert.Equal(t, id, r.Value().ID)

	r = uc.Execute(ctx, identifier.New(identifier.Customer))
	assert.ErrorIs(t, r.Err(), apperrors.ErrNotFound)
}
