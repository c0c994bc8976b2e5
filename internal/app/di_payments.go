package app

import (
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/gateway"
	paymentsHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/http"
	paymentsRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/repository"
	paymentsUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/usecase"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// paymentsService bills reserved orders and confirms payments reported by the gateway.
type paymentsService struct {
	billings *paymentsHTTP.BillingHandler
	module   *Module
}

func (c *Container) paymentsService() (*paymentsService, error) {
	err := c.initOnce(ServicePayments, &c.paymentsInit, func() (err error) {
		c.payments, err = c.initPaymentsService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.payments, nil
}

func (c *Container) initPaymentsService() (*paymentsService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for payments service: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for payments service: %w", err)
	}

	executor, err := c.executor(ServicePayments)
	if err != nil {
		return nil, err
	}

	emitter, relay, err := c.outbox(ServicePayments)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(gateway.Config{
		Driver:   c.config.PaymentGatewayDriver,
		BaseURL:  c.config.PaymentGatewayURL,
		APIKey:   c.config.PaymentGatewayAPIKey,
		Timeout:  c.config.PaymentGatewayTimeout,
		RetryMax: c.config.PaymentGatewayRetryMax,
	}, executor.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create payment gateway: %w", err)
	}

	customers, createCustomer := c.shadow(executor, db, "payments_customers", identifier.Customer)
	billings := paymentsRepository.NewPostgreSQLBillingRepository(db)

	router, err := c.newRouter(ServicePayments,
		paymentsUsecase.CreateBillingRoute(
			paymentsUsecase.NewCreateBilling(executor, txManager, customers, billings, gw, emitter),
		),
		shadowUsecase.CustomerRoute(createCustomer),
	)
	if err != nil {
		return nil, err
	}

	return &paymentsService{
		billings: paymentsHTTP.NewBillingHandler(
			paymentsUsecase.NewSearchBillings(executor, billings),
			paymentsUsecase.NewConfirmPayment(executor, txManager, billings, emitter),
			c.config.PaymentWebhookSecret,
			executor.Logger(),
		),
		module: &Module{Name: ServicePayments, Relay: relay, Router: router},
	}, nil
}
