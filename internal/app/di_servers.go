package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/http"
)

// HTTPServer returns the API server with every service's routes mounted.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	err := c.initOnce("httpServer", &c.httpServerInit, func() (err error) {
		c.httpServer, err = c.initHTTPServer(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.initOnce("metricsServer", &c.metricsServerInit, func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	users, err := c.usersService()
	if err != nil {
		return nil, fmt.Errorf("failed to get users service for http server: %w", err)
	}

	inventory, err := c.inventoryService()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory service for http server: %w", err)
	}

	orders, err := c.ordersService()
	if err != nil {
		return nil, fmt.Errorf("failed to get orders service for http server: %w", err)
	}

	payments, err := c.paymentsService()
	if err != nil {
		return nil, fmt.Errorf("failed to get payments service for http server: %w", err)
	}

	shipments, err := c.shipmentsService()
	if err != nil {
		return nil, fmt.Errorf("failed to get shipments service for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	var meterProvider metric.MeterProvider
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, http.Handlers{
		Customers: users.customers,
		Employees: users.employees,
		Products:  inventory.products,
		Orders:    orders.orders,
		Billings:  payments.billings,
		Shipments: shipments.shipments,
	}, users.verifier, meterProvider)

	return server, nil
}
