package app

import (
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	inventoryHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/http"
	inventoryRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/repository"
	inventoryUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/usecase"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// inventoryService owns the catalog and reserves stock for new orders.
type inventoryService struct {
	products *inventoryHTTP.ProductHandler
	module   *Module
}

func (c *Container) inventoryService() (*inventoryService, error) {
	err := c.initOnce(ServiceInventory, &c.inventoryInit, func() (err error) {
		c.inventory, err = c.initInventoryService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.inventory, nil
}

func (c *Container) initInventoryService() (*inventoryService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for inventory service: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for inventory service: %w", err)
	}

	executor, err := c.executor(ServiceInventory)
	if err != nil {
		return nil, err
	}

	emitter, relay, err := c.outbox(ServiceInventory)
	if err != nil {
		return nil, err
	}

	employees, createEmployee := c.shadow(executor, db, "inventory_employees", identifier.Employee)
	products := inventoryRepository.NewPostgreSQLProductRepository(db)
	reservations := inventoryRepository.NewPostgreSQLReservationRepository(db)

	router, err := c.newRouter(ServiceInventory,
		inventoryUsecase.ReserveStockRoute(
			inventoryUsecase.NewReserveStock(executor, txManager, products, reservations, emitter),
		),
		shadowUsecase.EmployeeRoute(createEmployee),
	)
	if err != nil {
		return nil, err
	}

	return &inventoryService{
		products: inventoryHTTP.NewProductHandler(
			inventoryUsecase.NewCreateProduct(executor, employees, products),
			inventoryUsecase.NewSearchProducts(executor, products),
			executor.Logger(),
		),
		module: &Module{Name: ServiceInventory, Relay: relay, Router: router},
	}, nil
}
