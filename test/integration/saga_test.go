// Package integration runs the whole order saga end to end: every service's API,
// consumers and outbox relays in one process over the in-memory transport and a real
// PostgreSQL database.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/app"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
	inventoryDTO "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/http/dto"
	ordersDTO "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/http/dto"
	paymentsHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/http"
	paymentsDTO "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/http/dto"
	shipmentsDTO "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/testutil"
	usersDTO "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/http/dto"
)

const (
	webhookSecret = "whsec_test"
	waitFor       = 15 * time.Second
	tick          = 50 * time.Millisecond
)

// sagaTestContext holds the running process and the HTTP server in front of it.
type sagaTestContext struct {
	container *app.Container
	server    *httptest.Server
	cancel    context.CancelFunc
	group     *errgroup.Group
}

// do performs an HTTP request and returns the status and body.
func (s *sagaTestContext) do(t *testing.T, method, path, token string, body any, headers ...string) (int, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	return resp.StatusCode, respBody
}

// signUp registers an account of kind ("customers" or "employees") and returns its
// ID and access token.
func (s *sagaTestContext) signUp(t *testing.T, kind, name, email string) (string, string) {
	t.Helper()

	status, body := s.do(t, http.MethodPost, "/v1/"+kind, "", usersDTO.RegisterAccountRequest{
		Name:     name,
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var account usersDTO.AccountResponse
	require.NoError(t, json.Unmarshal(body, &account))

	status, body = s.do(t, http.MethodPost, "/v1/"+kind+"/sessions", "", usersDTO.CreateSessionRequest{
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var session usersDTO.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session.AccessToken)

	return account.ID, session.AccessToken
}

// getOrder fetches an order as its customer.
func (s *sagaTestContext) getOrder(t *testing.T, token, orderID string) ordersDTO.OrderResponse {
	t.Helper()

	status, body := s.do(t, http.MethodGet, "/v1/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var order ordersDTO.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	return order
}

// setupSagaTest starts every service of the process against the test database.
func setupSagaTest(t *testing.T) *sagaTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.SetupPostgresDB(t)
	testutil.TeardownDB(t, db)

	cfg := &config.Config{
		ServiceName:                  "starsoft-integration",
		ServerHost:                   "localhost",
		ShutdownTimeout:              5 * time.Second,
		DBDriver:                     "postgres",
		DBConnectionString:           testutil.GetPostgresTestDSN(),
		DBMaxOpenConnections:         10,
		DBMaxIdleConnections:         5,
		DBConnMaxLifetime:            time.Minute,
		LogLevel:                     "error",
		JWTSecret:                    "integration-secret",
		AuthTokenExpiration:          time.Hour,
		Transport:                    config.TransportMemory,
		ConsumerRetryInitialInterval: 10 * time.Millisecond,
		ConsumerRetryMaxInterval:     100 * time.Millisecond,
		ConsumerRetryMaxElapsed:      10 * time.Second,
		OutboxInterval:               20 * time.Millisecond,
		OutboxBatchSize:              50,
		OutboxMaxRetries:             5,
		PaymentGatewayDriver:         "sandbox",
		PaymentGatewayURL:            "https://sandbox.payments.test",
		PaymentWebhookSecret:         webhookSecret,
		EmailDriver:                  "log",
		EmailFrom:                    "shop@example.com",
	}

	container := app.NewContainer(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	modules := make([]*app.Module, 0, len(app.ServiceNames()))
	for _, name := range app.ServiceNames() {
		module, err := container.Module(name)
		require.NoError(t, err, "failed to build %s", name)
		modules = append(modules, module)
	}

	// Subscriptions must exist before the first relay publishes.
	for _, module := range modules {
		if module.Router == nil {
			continue
		}
		dispatcher, err := container.Dispatcher(module)
		require.NoError(t, err)

		topics := module.Router.Topics()
		subscriber, err := container.Subscriber(module.Name, topics)
		require.NoError(t, err)

		g.Go(func() error {
			return subscriber.Subscribe(gctx, topics, dispatcher)
		})
	}

	for _, module := range modules {
		if module.Relay == nil {
			continue
		}
		g.Go(func() error {
			return module.Relay.Start(gctx)
		})
	}

	server, err := container.HTTPServer(ctx)
	require.NoError(t, err)

	return &sagaTestContext{
		container: container,
		server:    httptest.NewServer(server.GetHandler()),
		cancel:    cancel,
		group:     g,
	}
}

// teardown stops the workers and releases every resource.
func (s *sagaTestContext) teardown(t *testing.T) {
	t.Helper()

	s.server.Close()
	s.cancel()
	if err := s.group.Wait(); err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.NoError(t, s.container.Shutdown(context.Background()))
}

func TestOrderSaga(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	s := setupSagaTest(t)
	defer s.teardown(t)

	_, employeeToken := s.signUp(t, "employees", "Grace Hopper", "grace@example.com")
	customerID, customerToken := s.signUp(t, "customers", "Ada Lovelace", "ada@example.com")

	// The employee is known to inventory once employee.created has been consumed.
	var product inventoryDTO.ProductResponse
	require.Eventually(t, func() bool {
		status, body := s.do(t, http.MethodPost, "/v1/products", employeeToken, inventoryDTO.CreateProductRequest{
			Name:           "Mechanical keyboard",
			PriceInCents:   45000,
			AvailableCount: 10,
		})
		if status != http.StatusCreated {
			return false
		}
		return json.Unmarshal(body, &product) == nil
	}, waitFor, tick, "product was never created")

	var order ordersDTO.OrderResponse
	require.Eventually(t, func() bool {
		status, body := s.do(t, http.MethodPost, "/v1/orders", customerToken, ordersDTO.CreateOrderRequest{
			Items: []ordersDTO.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		})
		if status != http.StatusCreated {
			return false
		}
		return json.Unmarshal(body, &order) == nil
	}, waitFor, tick, "order was never created")

	assert.Equal(t, customerID, order.CustomerID)
	assert.Equal(t, "CREATED", order.Status)

	t.Run("stock is reserved and a billing is issued", func(t *testing.T) {
		var billing paymentsDTO.BillingResponse
		require.Eventually(t, func() bool {
			status, body := s.do(t, http.MethodGet, "/v1/billings", customerToken, nil)
			if status != http.StatusOK {
				return false
			}
			var list paymentsDTO.BillingListResponse
			if json.Unmarshal(body, &list) != nil || len(list.Data) == 0 {
				return false
			}
			billing = list.Data[0]
			return true
		}, waitFor, tick, "billing was never issued")

		assert.Equal(t, order.ID, billing.OrderID)
		assert.Equal(t, int64(90000), billing.AmountInCents)
		assert.Equal(t, "AWAITING_PAYMENT", billing.Status)
		assert.NotEmpty(t, billing.PaymentURL)

		require.Eventually(t, func() bool {
			return s.getOrder(t, customerToken, order.ID).Status == "AWAITING_PAYMENT"
		}, waitFor, tick)

		status, body := s.do(t, http.MethodGet, "/v1/products", "", nil)
		require.Equal(t, http.StatusOK, status)
		var products inventoryDTO.ProductListResponse
		require.NoError(t, json.Unmarshal(body, &products))
		require.Len(t, products.Data, 1)
		assert.Equal(t, 8, products.Data[0].AvailableCount)
		assert.Equal(t, 2, products.Data[0].UnavailableCount)

		t.Run("webhook rejects a wrong secret", func(t *testing.T) {
			status, _ := s.do(t, http.MethodPost, "/v1/billings/webhook", "", paymentsDTO.PaymentWebhookRequest{
				ExternalBillingID: billing.ExternalBillingID,
				PaymentMethod:     "pix",
			}, paymentsHTTP.WebhookSecretHeader, "wrong")
			assert.Equal(t, http.StatusUnauthorized, status)
		})

		for range 2 {
			status, body := s.do(t, http.MethodPost, "/v1/billings/webhook", "", paymentsDTO.PaymentWebhookRequest{
				ExternalBillingID: billing.ExternalBillingID,
				PaymentMethod:     "pix",
			}, paymentsHTTP.WebhookSecretHeader, webhookSecret)
			require.Equal(t, http.StatusOK, status, string(body))
		}
	})

	t.Run("paid order is shipped and delivered", func(t *testing.T) {
		var shipped ordersDTO.OrderResponse
		require.Eventually(t, func() bool {
			shipped = s.getOrder(t, customerToken, order.ID)
			return shipped.Status == "SHIPPED" && shipped.ShipmentID != ""
		}, waitFor, tick, "order was never shipped")
		assert.Equal(t, "pix", shipped.PaymentMethod)

		status, body := s.do(t, http.MethodPost, "/v1/shipments/"+shipped.ShipmentID+"/delivered", employeeToken, nil)
		require.Equal(t, http.StatusOK, status, string(body))

		var shipment shipmentsDTO.ShipmentResponse
		require.NoError(t, json.Unmarshal(body, &shipment))
		assert.Equal(t, order.ID, shipment.OrderID)
		assert.NotNil(t, shipment.DeliveredAt)

		status, _ = s.do(t, http.MethodPost, "/v1/shipments/"+shipped.ShipmentID+"/delivered", customerToken, nil)
		assert.Equal(t, http.StatusForbidden, status)

		require.Eventually(t, func() bool {
			return s.getOrder(t, customerToken, order.ID).Status == "DELIVERED"
		}, waitFor, tick, "order was never delivered")
	})

	t.Run("every outbox is drained exactly once", func(t *testing.T) {
		db := testutil.OpenPostgresDB(t)
		defer testutil.TeardownDB(t, db)

		require.Eventually(t, func() bool {
			return testutil.CountRows(t, db, "payments_outbox_events", "status = 'pending'") == 0
		}, waitFor, tick)

		assert.Equal(t, 1, testutil.CountRows(t, db, "payments_billings", "order_id = $1", order.ID))
		assert.Equal(t, 1, testutil.CountRows(t, db, "shipments_shipments", "order_id = $1", order.ID))
		assert.Equal(t, 1, testutil.CountRows(t, db, "payments_outbox_events", "event_type = 'payment.done'"))
		assert.Positive(t, testutil.CountRows(t, db, "notifications_notifications", "order_id = $1", order.ID))
	})
}
