package commands

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/app"
)

// RunConsumer consumes the events routed to service until SIGINT/SIGTERM.
func RunConsumer(ctx context.Context, service string) error {
	container, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeContainer(container, logger)

	ctx, cancel := withSignals(ctx)
	defer cancel()

	module, err := lookupModule(container, service)
	if err != nil {
		return err
	}

	consume, err := prepareConsumer(container, module)
	if err != nil {
		return err
	}

	logger.Info("starting consumer", zap.String("service", service))
	return runWorker(ctx, container, logger, consume)
}

// RunRelay publishes the outbox events of service until SIGINT/SIGTERM.
func RunRelay(ctx context.Context, service string) error {
	container, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeContainer(container, logger)

	ctx, cancel := withSignals(ctx)
	defer cancel()

	module, err := lookupModule(container, service)
	if err != nil {
		return err
	}
	if module.Relay == nil {
		return fmt.Errorf("service %s emits no events", service)
	}

	logger.Info("starting outbox relay", zap.String("service", service))
	return runWorker(ctx, container, logger, module.Relay.Start)
}

// runWorker runs work next to the metrics server, when metrics are enabled, until ctx
// is done or either of them fails.
func runWorker(
	ctx context.Context,
	container *app.Container,
	logger *zap.Logger,
	work func(context.Context) error,
) error {
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return ignoreCanceled(work(gctx))
	})

	if metricsServer != nil {
		g.Go(func() error {
			return metricsServer.Start(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), container.Config().ShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
			return nil
		})
	}

	return g.Wait()
}

// RunStandalone runs the API, every consumer and every outbox relay in one process.
// Subscriptions are declared before any relay starts so the in-memory transport
// delivers the first events.
func RunStandalone(ctx context.Context, version string) error {
	container, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeContainer(container, logger)

	cfg := container.Config()
	gin.SetMode(cfg.GetGinMode())
	logger.Info("starting standalone",
		zap.String("version", version),
		zap.String("transport", cfg.Transport),
	)

	ctx, cancel := withSignals(ctx)
	defer cancel()

	modules := make([]*app.Module, 0, len(app.ServiceNames()))
	for _, name := range app.ServiceNames() {
		module, err := lookupModule(container, name)
		if err != nil {
			return err
		}
		modules = append(modules, module)
	}

	var consumers []func(context.Context) error
	for _, module := range modules {
		if module.Router == nil {
			continue
		}
		consume, err := prepareConsumer(container, module)
		if err != nil {
			return err
		}
		consumers = append(consumers, consume)
	}

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

	for _, consume := range consumers {
		g.Go(func() error {
			return ignoreCanceled(consume(gctx))
		})
	}

	for _, module := range modules {
		if module.Relay == nil {
			continue
		}
		g.Go(func() error {
			if err := ignoreCanceled(module.Relay.Start(gctx)); err != nil {
				return fmt.Errorf("%s outbox relay: %w", module.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// prepareConsumer builds the dispatcher of module and declares its subscription.
// The returned function blocks consuming until ctx is done.
func prepareConsumer(container *app.Container, module *app.Module) (func(context.Context) error, error) {
	dispatcher, err := container.Dispatcher(module)
	if err != nil {
		return nil, err
	}

	topics := module.Router.Topics()
	subscriber, err := container.Subscriber(module.Name, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s subscriber: %w", module.Name, err)
	}

	return func(ctx context.Context) error {
		if err := subscriber.Subscribe(ctx, topics, dispatcher); err != nil {
			return fmt.Errorf("%s consumer: %w", module.Name, err)
		}
		return nil
	}, nil
}
