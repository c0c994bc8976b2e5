package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/domain"
)

// mockRepository is a mock implementation of Repository for testing.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ValidateID(ctx context.Context, id identifier.ID) (*domain.Shadow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shadow), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, shadow *domain.Shadow) error {
	args := m.Called(ctx, shadow)
	return args.Error(0)
}

func newCreateShadow(repo Repository, model identifier.Model) *CreateShadow {
	uc := NewCreateShadow(operation.NewExecutor("orders", zap.NewNop(), nil), repo, model)
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return uc
}

func TestCreateShadow_Execute(t *testing.T) {
	ctx := context.Background()
	rawID := uuid.NewString()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success_CreatesWithEventIdentifier", func(t *testing.T) {
		repo := &mockRepository{}
		id := identifier.MustParse(rawID, identifier.Customer)
		repo.On("ValidateID", mock.Anything, id).Return(nil, nil).Once()
		repo.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Shadow) bool {
			return s.ID == id && s.Email == "ana@example.com" && s.Name == "Ana" && s.CreatedAt.Equal(createdAt)
		})).Return(nil).Once()

		r := newCreateShadow(repo, identifier.Customer).Execute(ctx, Input{
			ID:        rawID,
			Name:      " Ana ",
			Email:     "ANA@example.com",
			CreatedAt: createdAt,
		})

		require.True(t, r.IsSuccess())
		assert.Equal(t, id, r.Value().ID)
		repo.AssertExpectations(t)
	})

	t.Run("Success_RedeliveryIsNoOp", func(t *testing.T) {
		repo := &mockRepository{}
		id := identifier.MustParse(rawID, identifier.Customer)
		existing := &domain.Shadow{ID: id, Name: "Ana", Email: "ana@example.com", CreatedAt: createdAt}
		repo.On("ValidateID", mock.Anything, id).Return(existing, nil).Once()

		uc := newCreateShadow(repo, identifier.Customer)
		r := uc.Execute(ctx, Input{ID: rawID, Name: "Ana", Email: "ana@example.com"})

		require.True(t, r.IsSuccess())
		assert.Same(t, existing, r.Value())
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Success_ConcurrentInsertIsNoOp", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("ValidateID", mock.Anything, mock.Anything).Return(nil, nil).Once()
		repo.On("Save", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(apperrors.ErrConflict, "customer already exists")).Once()

		r := newCreateShadow(repo, identifier.Customer).Execute(ctx, Input{ID: rawID, Name: "Ana"})

		assert.True(t, r.IsSuccess())
	})

	t.Run("Error_InvalidIdentifier", func(t *testing.T) {
		repo := &mockRepository{}

		r := newCreateShadow(repo, identifier.Employee).Execute(ctx, Input{ID: "emp-1"})

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), apperrors.ErrInvalidInput)
		var invalid *apperrors.InvalidIDError
		require.ErrorAs(t, r.Err(), &invalid)
		assert.Equal(t, "employee", invalid.Model)
		repo.AssertNotCalled(t, "ValidateID", mock.Anything, mock.Anything)
	})

	t.Run("Error_RepositoryFault", func(t *testing.T) {
		repo := &mockRepository{}
		fault := apperrors.NewRepositoryError("customer_shadow", "validate_id", errors.New("connection reset"))
		repo.On("ValidateID", mock.Anything, mock.Anything).Return(nil, fault).Once()

		r := newCreateShadow(repo, identifier.Customer).Execute(ctx, Input{ID: rawID})

		require.True(t, r.IsFailure())
		assert.ErrorIs(t, r.Err(), apperrors.ErrRepository)
	})
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	id := identifier.New(identifier.Customer)

	t.Run("Success", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("ValidateID", mock.Anything, id).Return(&domain.Shadow{ID: id}, nil).Once()

		shadow, err := Require(ctx, repo, id)
		require.NoError(t, err)
		assert.Equal(t, id, shadow.ID)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("ValidateID", mock.Anything, id).Return(nil, nil).Once()

		_, err := Require(ctx, repo, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Contains(t, err.Error(), "customer")
	})
}

func TestRoutes(t *testing.T) {
	ctx := context.Background()
	rawID := uuid.NewString()

	customerRepo := &mockRepository{}
	customerRepo.On("ValidateID", mock.Anything, identifier.MustParse(rawID, identifier.Customer)).
		Return(nil, nil).Once()
	customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	employeeRepo := &mockRepository{}

	router, err := events.NewRouter(zap.NewNop(),
		CustomerRoute(newCreateShadow(customerRepo, identifier.Customer)),
		EmployeeRoute(newCreateShadow(employeeRepo, identifier.Employee)),
	)
	require.NoError(t, err)

	payload, err := json.Marshal(events.CustomerCreatedPayload{CustomerID: rawID, Name: "Ana", Email: "a@b.co"})
	require.NoError(t, err)
	outcome := router.Handle(ctx, messaging.Message{Type: string(events.CustomerCreated), Value: payload})
	assert.Equal(t, messaging.OutcomeAck, outcome.Kind)

	payload, err = json.Marshal(events.EmployeeCreatedPayload{EmployeeID: "bad"})
	require.NoError(t, err)
	outcome = router.Handle(ctx, messaging.Message{Type: string(events.EmployeeCreated), Value: payload})
	assert.Equal(t, messaging.OutcomeDrop, outcome.Kind)

	customerRepo.AssertExpectations(t)
}
