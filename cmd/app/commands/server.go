package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/http"
)

// RunServer starts the HTTP API with graceful shutdown support.
// Blocks until receiving SIGINT/SIGTERM or encountering a fatal error.
func RunServer(ctx context.Context, version string) error {
	container, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeContainer(container, logger)

	cfg := container.Config()
	gin.SetMode(cfg.GetGinMode())
	logger.Info("starting server", zap.String("version", version))

	ctx, cancel := withSignals(ctx)
	defer cancel()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	serve(gctx, g, cfg.ShutdownTimeout, logger, server, metricsServer)

	return g.Wait()
}

// serve runs the API and metrics servers in g and shuts both down once ctx is done.
func serve(
	ctx context.Context,
	g *errgroup.Group,
	timeout time.Duration,
	logger *zap.Logger,
	server *http.Server,
	metricsServer *http.MetricsServer,
) {
	g.Go(func() error {
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(ctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
		}
		return nil
	})
}
