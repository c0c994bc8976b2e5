package app

import (
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
	shipmentsHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/http"
	shipmentsRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/repository"
	shipmentsUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/usecase"
)

// shipmentsService ships paid orders and records their delivery.
type shipmentsService struct {
	shipments *shipmentsHTTP.ShipmentHandler
	module    *Module
}

func (c *Container) shipmentsService() (*shipmentsService, error) {
	err := c.initOnce(ServiceShipments, &c.shipmentsInit, func() (err error) {
		c.shipments, err = c.initShipmentsService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.shipments, nil
}

func (c *Container) initShipmentsService() (*shipmentsService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for shipments service: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for shipments service: %w", err)
	}

	executor, err := c.executor(ServiceShipments)
	if err != nil {
		return nil, err
	}

	emitter, relay, err := c.outbox(ServiceShipments)
	if err != nil {
		return nil, err
	}

	customers, createCustomer := c.shadow(executor, db, "shipments_customers", identifier.Customer)
	shipments := shipmentsRepository.NewPostgreSQLShipmentRepository(db)

	router, err := c.newRouter(ServiceShipments,
		shipmentsUsecase.CreateShipmentRoute(
			shipmentsUsecase.NewCreateShipment(executor, txManager, customers, shipments, emitter),
		),
		shadowUsecase.CustomerRoute(createCustomer),
	)
	if err != nil {
		return nil, err
	}

	return &shipmentsService{
		shipments: shipmentsHTTP.NewShipmentHandler(
			shipmentsUsecase.NewMarkShipmentDelivered(executor, txManager, shipments, emitter),
			executor.Logger(),
		),
		module: &Module{Name: ServiceShipments, Relay: relay, Router: router},
	}, nil
}
