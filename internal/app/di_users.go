package app

import (
	"fmt"

	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	usersDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
	usersHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/http"
	usersRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/repository"
	usersUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/usecase"
)

// usersService owns customer and employee accounts and issues access tokens.
type usersService struct {
	customers *usersHTTP.AccountHandler
	employees *usersHTTP.AccountHandler
	verifier  *usersUsecase.VerifyToken
	module    *Module
}

// TokenVerifier returns the verifier used by the authentication middleware.
func (c *Container) TokenVerifier() (authHTTP.TokenVerifier, error) {
	svc, err := c.usersService()
	if err != nil {
		return nil, err
	}
	return svc.verifier, nil
}

func (c *Container) usersService() (*usersService, error) {
	err := c.initOnce(ServiceUsers, &c.usersInit, func() (err error) {
		c.users, err = c.initUsersService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.users, nil
}

func (c *Container) initUsersService() (*usersService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for users service: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for users service: %w", err)
	}

	passwords, err := c.PasswordService()
	if err != nil {
		return nil, fmt.Errorf("failed to get password service for users service: %w", err)
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for users service: %w", err)
	}

	executor, err := c.executor(ServiceUsers)
	if err != nil {
		return nil, err
	}

	emitter, relay, err := c.outbox(ServiceUsers)
	if err != nil {
		return nil, err
	}

	repo := usersRepository.NewPostgreSQLAccountRepository(db)
	logger := executor.Logger()

	handler := func(kind usersDomain.Kind) *usersHTTP.AccountHandler {
		return usersHTTP.NewAccountHandler(
			usersUsecase.NewRegisterAccount(executor, txManager, repo, emitter, passwords, kind),
			usersUsecase.NewAuthenticateAccount(executor, repo, passwords, tokens, kind),
			usersUsecase.NewGetAccount(executor, repo, kind),
			logger,
		)
	}

	return &usersService{
		customers: handler(usersDomain.KindCustomer),
		employees: handler(usersDomain.KindEmployee),
		verifier:  usersUsecase.NewVerifyToken(executor, tokens),
		module:    &Module{Name: ServiceUsers, Relay: relay},
	}, nil
}
