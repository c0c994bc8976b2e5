package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/events"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging/kafka"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/messaging/memory"
	outboxRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/outbox/repository"
	outboxUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/outbox/usecase"
)

// Service names. Each one is deployed on its own with `app consumer --service <name>`.
const (
	ServiceUsers         = "users"
	ServiceInventory     = "inventory"
	ServiceOrders        = "orders"
	ServicePayments      = "payments"
	ServiceShipments     = "shipments"
	ServiceNotifications = "notifications"
)

// ServiceNames lists every service in saga order.
func ServiceNames() []string {
	return []string{
		ServiceUsers,
		ServiceInventory,
		ServiceOrders,
		ServicePayments,
		ServiceShipments,
		ServiceNotifications,
	}
}

// Module is the runtime view of one service: the relay draining its outbox and the
// router dispatching the events it consumes. Relay is nil for services that emit
// nothing and Router is nil for services that consume nothing.
type Module struct {
	Name   string
	Relay  outboxUsecase.UseCase
	Router *events.Router
}

// Module returns the runtime module of the named service.
func (c *Container) Module(name string) (*Module, error) {
	switch name {
	case ServiceUsers:
		svc, err := c.usersService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	case ServiceInventory:
		svc, err := c.inventoryService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	case ServiceOrders:
		svc, err := c.ordersService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	case ServicePayments:
		svc, err := c.paymentsService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	case ServiceShipments:
		svc, err := c.shipmentsService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	case ServiceNotifications:
		svc, err := c.notificationsService()
		if err != nil {
			return nil, err
		}
		return svc.module, nil
	default:
		return nil, fmt.Errorf("unknown service %q", name)
	}
}

// Publisher returns the transport publisher selected by TRANSPORT.
func (c *Container) Publisher() (messaging.Publisher, error) {
	err := c.initOnce("publisher", &c.publisherInit, func() error {
		switch c.config.Transport {
		case config.TransportKafka:
			brokers := c.config.Brokers()
			if len(brokers) == 0 {
				return fmt.Errorf("no kafka brokers configured")
			}
			c.publisher = kafka.NewPublisher(brokers, c.Logger())
		case config.TransportMemory:
			c.publisher = c.memoryBroker()
		default:
			return fmt.Errorf("unsupported transport: %s", c.config.Transport)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.publisher, nil
}

// Subscriber returns a subscriber consuming topics in the consumer group of service.
// With the memory transport the group's subscriptions are declared immediately, so
// consumers must be requested before any relay publishes.
func (c *Container) Subscriber(service string, topics []string) (messaging.Subscriber, error) {
	group := c.GroupID(service)

	var subscriber messaging.Subscriber
	switch c.config.Transport {
	case config.TransportKafka:
		brokers := c.config.Brokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("no kafka brokers configured")
		}
		subscriber = kafka.NewSubscriber(brokers, group, c.Logger())
	case config.TransportMemory:
		broker := c.memoryBroker()
		if err := broker.Declare(group, topics...); err != nil {
			return nil, fmt.Errorf("failed to declare %s subscriptions: %w", group, err)
		}
		subscriber = broker.Subscriber(group)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", c.config.Transport)
	}

	c.mu.Lock()
	c.subscribers = append(c.subscribers, subscriber)
	c.mu.Unlock()

	return subscriber, nil
}

// GroupID returns the consumer group of service.
func (c *Container) GroupID(service string) string {
	if c.config.KafkaGroupPrefix == "" {
		return service
	}
	return c.config.KafkaGroupPrefix + "-" + service
}

// Dispatcher wraps the router of module with the retry policy and the publisher that
// carries requeued and dead-lettered messages.
func (c *Container) Dispatcher(module *Module) (*messaging.Dispatcher, error) {
	if module.Router == nil {
		return nil, fmt.Errorf("service %s consumes no events", module.Name)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for %s dispatcher: %w", module.Name, err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for %s dispatcher: %w", module.Name, err)
	}

	policy := messaging.RetryPolicy{
		InitialInterval: c.config.ConsumerRetryInitialInterval,
		MaxInterval:     c.config.ConsumerRetryMaxInterval,
		MaxElapsedTime:  c.config.ConsumerRetryMaxElapsed,
		MaxRedeliveries: c.config.ConsumerMaxRedeliveries,
	}

	return messaging.NewDispatcher(
		module.Name,
		module.Router,
		policy,
		publisher,
		c.Logger().With(zap.String("service", module.Name)),
		businessMetrics,
	), nil
}

// memoryBroker returns the in-process broker shared by every service of this process.
func (c *Container) memoryBroker() *memory.Broker {
	c.brokerInit.Do(func() {
		c.broker = memory.NewBroker(c.Logger())
	})
	return c.broker
}

// outbox builds the emitter and the relay of service over its own outbox table.
func (c *Container) outbox(service string) (*outboxUsecase.Emitter, *outboxUsecase.OutboxUseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database for %s outbox: %w", service, err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get tx manager for %s outbox: %w", service, err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get publisher for %s outbox: %w", service, err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get business metrics for %s outbox: %w", service, err)
	}

	repo := outboxRepository.NewPostgreSQLOutboxEventRepository(db, service+"_outbox_events")
	processor := outboxUsecase.NewPublishingProcessor(service, publisher, businessMetrics)
	relay := outboxUsecase.NewOutboxUseCase(
		outboxUsecase.Config{
			Interval:   c.config.OutboxInterval,
			BatchSize:  c.config.OutboxBatchSize,
			MaxRetries: c.config.OutboxMaxRetries,
		},
		txManager,
		repo,
		processor,
		c.Logger().With(zap.String("service", service)),
	)

	return outboxUsecase.NewEmitter(repo), relay, nil
}

// newRouter builds the event router of service.
func (c *Container) newRouter(service string, routes ...events.Route) (*events.Router, error) {
	router, err := events.NewRouter(c.Logger().With(zap.String("service", service)), routes...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s event router: %w", service, err)
	}
	return router, nil
}
