// Package usecase implements the lazy creation of shadow records from account events.
package usecase

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/result"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/domain"
)

// Finder looks up a shadow by id. It returns nil when the shadow does not exist.
type Finder interface {
	ValidateID(ctx context.Context, id identifier.ID) (*domain.Shadow, error)
}

// Saver inserts a shadow.
type Saver interface {
	Save(ctx context.Context, shadow *domain.Shadow) error
}

// Repository is the storage a CreateShadow use case needs.
type Repository interface {
	Finder
	Saver
}

// Input is the account fact a shadow is built from.
type Input struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// CreateShadow stores the local copy of a customer or employee. Redeliveries of the
// same account are no-ops that return the stored copy.
type CreateShadow struct {
	executor *operation.Executor
	repo     Repository
	model    identifier.Model
	now      func() time.Time
}

// NewCreateShadow creates a CreateShadow for accounts of model.
func NewCreateShadow(executor *operation.Executor, repo Repository, model identifier.Model) *CreateShadow {
	return &CreateShadow{
		executor: executor,
		repo:     repo,
		model:    model,
		now:      time.Now,
	}
}

// Execute validates the account id and saves the shadow unless it already exists.
func (uc *CreateShadow) Execute(ctx context.Context, in Input) result.Result[*domain.Shadow] {
	return operation.Execute(ctx, uc.executor, "create_"+string(uc.model)+"_shadow",
		func(ctx context.Context) (*domain.Shadow, error) {
			id, err := identifier.Parse(in.ID, uc.model)
			if err != nil {
				return nil, err
			}

			existing, err := uc.repo.ValidateID(ctx, id)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return existing, nil
			}

			now := uc.now().UTC()
			createdAt := in.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}

			shadow := &domain.Shadow{
				ID:        id,
				Name:      strings.TrimSpace(in.Name),
				Email:     strings.ToLower(strings.TrimSpace(in.Email)),
				CreatedAt: createdAt,
				UpdatedAt: now,
			}

			if err := uc.repo.Save(ctx, shadow); err != nil {
				// A concurrent delivery of the same event stored it first.
				if apperrors.Is(err, apperrors.ErrConflict) {
					return shadow, nil
				}
				return nil, err
			}

			return shadow, nil
		})
}

// Require returns the shadow for id, or a NotFound failure when it was not created yet.
func Require(ctx context.Context, finder Finder, id identifier.ID) (*domain.Shadow, error) {
	shadow, err := finder.ValidateID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shadow == nil {
		return nil, domain.NotFound(id)
	}
	return shadow, nil
}

// CustomerRoute binds customer.created to uc.
func CustomerRoute(uc *CreateShadow) events.Route {
	return events.Bind("create_customer_shadow", events.Critical,
		func(ctx context.Context, p events.CustomerCreatedPayload) error {
			return uc.Execute(ctx, Input{ID: p.CustomerID, Name: p.Name, Email: p.Email, CreatedAt: p.CreatedAt}).Err()
		})
}

// EmployeeRoute binds employee.created to uc.
func EmployeeRoute(uc *CreateShadow) events.Route {
	return events.Bind("create_employee_shadow", events.Critical,
		func(ctx context.Context, p events.EmployeeCreatedPayload) error {
			return uc.Execute(ctx, Input{ID: p.EmployeeID, Name: p.Name, Email: p.Email, CreatedAt: p.CreatedAt}).Err()
		})
}
