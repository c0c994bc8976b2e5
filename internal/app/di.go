// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging/memory"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/tracing"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *zap.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	tracerProvider  *sdktrace.TracerProvider

	// Messaging
	broker      *memory.Broker
	publisher   messaging.Publisher
	subscribers []messaging.Subscriber

	// Auth
	passwordService authService.PasswordService
	tokenService    authService.TokenService

	// Services
	users         *usersService
	inventory     *inventoryService
	orders        *ordersService
	payments      *paymentsService
	shipments     *shipmentsService
	notifications *notificationsService

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	tracerProviderInit  sync.Once
	brokerInit          sync.Once
	publisherInit       sync.Once
	passwordServiceInit sync.Once
	tokenServiceInit    sync.Once
	usersInit           sync.Once
	inventoryInit       sync.Once
	ordersInit          sync.Once
	paymentsInit        sync.Once
	shipmentsInit       sync.Once
	notificationsInit   sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// initOnce runs init the first time key is requested and returns the error it
// recorded on every later call.
func (c *Container) initOnce(key string, once *sync.Once, init func() error) error {
	once.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[key] = err
			c.mu.Unlock()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[key]
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *zap.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	err := c.initOnce("db", &c.dbInit, func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.initOnce("txManager", &c.txManagerInit, func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.initOnce("metricsProvider", &c.metricsProviderInit, func() (err error) {
		if !c.config.MetricsEnabled {
			return nil
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.initOnce("businessMetrics", &c.businessMetricsInit, func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}

		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// TracerProvider installs the global tracer provider and propagator on first access.
func (c *Container) TracerProvider() (*sdktrace.TracerProvider, error) {
	err := c.initOnce("tracerProvider", &c.tracerProviderInit, func() (err error) {
		c.tracerProvider, err = tracing.Setup(context.Background(), tracing.Config{
			ServiceName: c.config.ServiceName,
			Enabled:     c.config.TracingEnabled,
			Endpoint:    c.config.OTLPEndpoint,
			Insecure:    c.config.OTLPInsecure,
		})
		if err != nil {
			return fmt.Errorf("failed to setup tracing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tracerProvider, nil
}

// executor returns the use case executor of one service.
func (c *Container) executor(service string) (*operation.Executor, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for %s: %w", service, err)
	}
	return operation.NewExecutor(service, c.Logger().With(zap.String("service", service)), businessMetrics), nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	for _, subscriber := range c.subscribers {
		if err := subscriber.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("subscriber close: %w", err))
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("publisher close: %w", err))
		}
	}

	if c.broker != nil {
		if err := c.broker.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("memory broker close: %w", err))
		}
	}

	if c.tracerProvider != nil {
		if err := c.tracerProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.logger != nil {
		_ = c.logger.Sync()
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates a JSON production logger at the configured level.
func (c *Container) initLogger() *zap.Logger {
	level, err := zapcore.ParseLevel(c.config.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	if c.config.ServiceName != "" {
		logger = logger.With(zap.String("app", c.config.ServiceName))
	}
	return logger
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
