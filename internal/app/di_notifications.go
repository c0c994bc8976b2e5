package app

import (
	"fmt"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/email"
	notificationsRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/repository"
	notificationsUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/notifications/usecase"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// notificationsService e-mails billing links to customers. It emits no events.
type notificationsService struct {
	module *Module
}

func (c *Container) notificationsService() (*notificationsService, error) {
	err := c.initOnce(ServiceNotifications, &c.notificationsInit, func() (err error) {
		c.notifications, err = c.initNotificationsService()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.notifications, nil
}

func (c *Container) initNotificationsService() (*notificationsService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for notifications service: %w", err)
	}

	executor, err := c.executor(ServiceNotifications)
	if err != nil {
		return nil, err
	}

	sender, err := email.New(email.Config{
		Driver:   c.config.EmailDriver,
		APIURL:   c.config.EmailAPIURL,
		APIKey:   c.config.EmailAPIKey,
		From:     c.config.EmailFrom,
		Timeout:  c.config.EmailTimeout,
		RetryMax: c.config.EmailRetryMax,
	}, executor.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create email sender: %w", err)
	}

	customers, createCustomer := c.shadow(executor, db, "notifications_customers", identifier.Customer)
	notifications := notificationsRepository.NewPostgreSQLNotificationRepository(db)

	router, err := c.newRouter(ServiceNotifications,
		notificationsUsecase.SendBillingEmailRoute(
			notificationsUsecase.NewSendBillingEmail(executor, customers, notifications, sender),
		),
		shadowUsecase.CustomerRoute(createCustomer),
	)
	if err != nil {
		return nil, err
	}

	return &notificationsService{
		module: &Module{Name: ServiceNotifications, Router: router},
	}, nil
}
