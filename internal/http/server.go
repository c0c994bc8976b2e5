// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
	inventoryHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/metrics"
	ordersHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/http"
	paymentsHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/http"
	shipmentsHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/http"
	usersHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/http"
)

// Handlers groups the service handlers mounted on the API router.
// A nil handler leaves its routes unregistered.
type Handlers struct {
	Customers *usersHTTP.AccountHandler
	Employees *usersHTTP.AccountHandler
	Products  *inventoryHTTP.ProductHandler
	Orders    *ordersHTTP.OrderHandler
	Billings  *paymentsHTTP.BillingHandler
	Shipments *shipmentsHTTP.ShipmentHandler
}

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *zap.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *zap.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with the middleware chain and every API route.
// meterProvider may be nil when metrics are disabled.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	verifier authHTTP.TokenVerifier,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(CustomLoggerMiddleware(s.logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticate := authHTTP.AuthenticationMiddleware(verifier, s.logger)
	customerOnly := authHTTP.RequireRole(authDomain.RoleCustomer, s.logger)
	employeeOnly := authHTTP.RequireRole(authDomain.RoleEmployee, s.logger)

	sessionChain := []gin.HandlerFunc{}
	if cfg.RateLimitSessionEnabled {
		sessionChain = append(sessionChain, authHTTP.SessionRateLimitMiddleware(
			ctx,
			cfg.RateLimitSessionRequestsPerSec,
			cfg.RateLimitSessionBurst,
			s.logger,
		))
	}

	v1 := router.Group("/v1")

	if h := handlers.Customers; h != nil {
		customers := v1.Group("/customers")
		customers.POST("", h.RegisterHandler)
		customers.POST("/sessions", append(sessionChain, h.CreateSessionHandler)...)
		customers.GET("/me", authenticate, customerOnly, h.MeHandler)
	}

	if h := handlers.Employees; h != nil {
		employees := v1.Group("/employees")
		employees.POST("", h.RegisterHandler)
		employees.POST("/sessions", append(sessionChain, h.CreateSessionHandler)...)
		employees.GET("/me", authenticate, employeeOnly, h.MeHandler)
	}

	if h := handlers.Products; h != nil {
		products := v1.Group("/products")
		products.GET("", h.SearchHandler)
		products.POST("", authenticate, employeeOnly, h.CreateHandler)
	}

	if h := handlers.Orders; h != nil {
		orders := v1.Group("/orders", authenticate, customerOnly)
		orders.POST("", h.CreateHandler)
		orders.GET("", h.SearchHandler)
		orders.GET("/:id", h.GetHandler)
	}

	if h := handlers.Billings; h != nil {
		billings := v1.Group("/billings")
		billings.GET("", authenticate, customerOnly, h.SearchHandler)
		billings.POST("/webhook", h.WebhookHandler)
	}

	if h := handlers.Shipments; h != nil {
		shipments := v1.Group("/shipments", authenticate, employeeOnly)
		shipments.POST("/:id/delivered", h.DeliveredHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only while the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
