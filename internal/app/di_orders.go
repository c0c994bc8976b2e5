package app

import (
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	ordersHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/http"
	ordersRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/repository"
	ordersUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/usecase"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// ordersService owns orders and follows their status through the saga.
type ordersService struct {
	orders *ordersHTTP.OrderHandler
	module *Module
}

func (c *Container) ordersService() (*ordersService, error) {
	err := c.initOnce(ServiceOrders, &c.ordersInit, func() (err error) {
		c.orders, err = c.initOrdersService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.orders, nil
}

func (c *Container) initOrdersService() (*ordersService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for orders service: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for orders service: %w", err)
	}

	executor, err := c.executor(ServiceOrders)
	if err != nil {
		return nil, err
	}

	emitter, relay, err := c.outbox(ServiceOrders)
	if err != nil {
		return nil, err
	}

	customers, createCustomer := c.shadow(executor, db, "orders_customers", identifier.Customer)
	orders := ordersRepository.NewPostgreSQLOrderRepository(db)

	routes := ordersUsecase.Routes(
		ordersUsecase.NewConfirmOrderStock(executor, txManager, orders),
		ordersUsecase.NewMarkOrderPaid(executor, txManager, orders),
		ordersUsecase.NewMarkOrderShipped(executor, txManager, orders),
		ordersUsecase.NewMarkOrderDelivered(executor, txManager, orders),
	)
	routes = append(routes, shadowUsecase.CustomerRoute(createCustomer))

	router, err := c.newRouter(ServiceOrders, routes...)
	if err != nil {
		return nil, err
	}

	return &ordersService{
		orders: ordersHTTP.NewOrderHandler(
			ordersUsecase.NewCreateOrder(executor, txManager, customers, orders, emitter),
			ordersUsecase.NewGetOrder(executor, orders),
			ordersUsecase.NewSearchOrders(executor, orders),
			executor.Logger(),
		),
		module: &Module{Name: ServiceOrders, Relay: relay, Router: router},
	}, nil
}
