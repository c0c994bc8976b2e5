// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
	operationMocks "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation/mocks"
	usersDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
	usersHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/http"
	usersUseCase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/usecase"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestServer creates a test server with a discarding logger.
func createTestServer() *Server {
	return NewServer(nil, "localhost", 8080, zap.NewNop())
}

type stubVerifier struct {
	principals map[string]*authDomain.Principal
}

func (v stubVerifier) Verify(_ context.Context, token string) (*authDomain.Principal, error) {
	if p, ok := v.principals[token]; ok {
		return p, nil
	}
	return nil, authDomain.ErrInvalidToken
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler_NotReady_NilDB(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

func TestCustomLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})
	router.GET("/broken", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?page=2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/test?page=2", first["path"])
	assert.EqualValues(t, http.StatusOK, first["status"])
	assert.NotEmpty(t, first["request_id"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// createMinimalRouter creates a minimal router with only health and ready endpoints for testing.
func createMinimalRouter(server *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(server.logger))

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return router
}

func TestRouter_HealthEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_StartWithoutRouter(t *testing.T) {
	server := createTestServer()

	err := server.Start(context.Background())
	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "localhost", 0, zap.NewNop())
	server.router = createMinimalRouter(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	assert.NoError(t, err)

	select {
	case err := <-errChan:
		t.Fatalf("server startup failed: %v", err)
	default:
	}
}

func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id header should be present")

	parsedUUID, err := uuid.Parse(requestID)
	require.NoError(t, err, "X-Request-Id should be a valid UUID")
	assert.NotEqual(t, uuid.Nil, parsedUUID, "X-Request-Id should not be nil UUID")
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	tests := []struct {
		name       string
		provider   *metrics.Provider
		path       string
		wantStatus int
	}{
		{name: "scrape", provider: provider, path: "/metrics", wantStatus: http.StatusOK},
		{name: "health", provider: provider, path: "/health", wantStatus: http.StatusOK},
		{name: "health without provider", path: "/health", wantStatus: http.StatusOK},
		{name: "scrape without provider", path: "/metrics", wantStatus: http.StatusNotFound},
		{name: "api routes are not served", provider: provider, path: "/v1/orders", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metricsServer := NewMetricsServer("localhost", 8081, zap.NewNop(), tt.provider)

			w := httptest.NewRecorder()
			metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.path == "/metrics" && tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			}
		})
	}
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	metricsServer := NewMetricsServer("localhost", 0, zap.NewNop(), nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- metricsServer.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, metricsServer.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestSetupRouter(t *testing.T) {
	customerID := identifier.New(identifier.Customer)
	employeeID := identifier.New(identifier.Employee)

	verifier := stubVerifier{principals: map[string]*authDomain.Principal{
		"customer-token": {SubjectID: customerID, Role: authDomain.RoleCustomer},
		"employee-token": {SubjectID: employeeID, Role: authDomain.RoleEmployee},
	}}

	get := &operationMocks.MockUseCase[identifier.ID, *usersDomain.Account]{}
	get.On("Execute", mock.Anything, customerID).Return(nil, apperrors.ErrNotFound)

	customers := usersHTTP.NewAccountHandler(
		&operationMocks.MockUseCase[usersUseCase.RegisterInput, *usersDomain.Account]{},
		&operationMocks.MockUseCase[usersUseCase.Credentials, *usersUseCase.Session]{},
		get,
		zap.NewNop(),
	)

	server := createTestServer()
	server.SetupRouter(
		context.Background(),
		&config.Config{ServiceName: "test", MetricsNamespace: "test"},
		Handlers{Customers: customers},
		verifier,
		nil,
	)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "ready without database", method: http.MethodGet, path: "/ready", wantStatus: http.StatusServiceUnavailable},
		{name: "me without token", method: http.MethodGet, path: "/v1/customers/me", wantStatus: http.StatusUnauthorized},
		{
			name:       "me with unknown token",
			method:     http.MethodGet,
			path:       "/v1/customers/me",
			token:      "forged",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "me with employee token",
			method:     http.MethodGet,
			path:       "/v1/customers/me",
			token:      "employee-token",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "me with customer token",
			method:     http.MethodGet,
			path:       "/v1/customers/me",
			token:      "customer-token",
			wantStatus: http.StatusNotFound,
		},
		{name: "unmounted service", method: http.MethodGet, path: "/v1/products", wantStatus: http.StatusNotFound},
		{name: "no metrics on api", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			server.GetHandler().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}

	get.AssertExpectations(t)
}
