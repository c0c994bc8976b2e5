// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/app"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
)

// bootstrap loads the configuration, builds the container and installs the global
// tracer provider.
func bootstrap() (*app.Container, *zap.Logger, error) {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	if _, err := container.TracerProvider(); err != nil {
		closeContainer(container, logger)
		return nil, nil, err
	}

	return container, logger, nil
}

// withSignals returns a context cancelled on SIGINT or SIGTERM.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *zap.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", zap.Error(err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *zap.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			zap.NamedError("source_error", sourceError),
			zap.NamedError("database_error", databaseError),
		)
	}
}

// ignoreCanceled treats a cancelled context as a clean stop.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// lookupModule returns the runtime module of service.
func lookupModule(container *app.Container, service string) (*app.Module, error) {
	module, err := container.Module(service)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s service: %w", service, err)
	}
	return module, nil
}
