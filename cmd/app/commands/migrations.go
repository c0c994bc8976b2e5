package commands

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// RunMigrations applies every pending migration under migrations/postgresql.
// Returns nil if there is nothing to apply.
func RunMigrations(logger *zap.Logger, dbDriver, dbConnectionString string) error {
	logger.Info("running database migrations", zap.String("driver", dbDriver))

	if dbDriver != "postgres" {
		return fmt.Errorf("failed to create migrate instance: unsupported driver %q", dbDriver)
	}

	m, err := migrate.New("file://migrations/postgresql", dbConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
