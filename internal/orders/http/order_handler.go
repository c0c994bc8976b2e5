// Package http provides HTTP handlers for customer orders.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/orders/usecase"
)

// OrderHandler handles order requests of authenticated customers.
type OrderHandler struct {
	create operation.UseCase[usecase.CreateOrderInput, *domain.Order]
	get    operation.UseCase[usecase.GetOrderInput, *domain.Order]
	search operation.UseCase[usecase.SearchOrdersInput, *database.PagedResult[*domain.Order]]
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(
	create operation.UseCase[usecase.CreateOrderInput, *domain.Order],
	get operation.UseCase[usecase.GetOrderInput, *domain.Order],
	search operation.UseCase[usecase.SearchOrdersInput, *database.PagedResult[*domain.Order]],
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{create: create, get: get, search: search, logger: logger}
}

// CreateHandler places an order.
// POST /v1/orders - Requires a customer token. Returns 201 Created.
func (h *OrderHandler) CreateHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	order, err := h.create.Execute(c.Request.Context(), req.ToCreateOrderInput(principal.SubjectID)).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrderToResponse(order))
}

// GetHandler returns one order of the customer.
// GET /v1/orders/:id - Requires a customer token. Returns 200 OK.
func (h *OrderHandler) GetHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	in := usecase.GetOrderInput{CustomerID: principal.SubjectID, OrderID: c.Param("id")}
	order, err := h.get.Execute(c.Request.Context(), in).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// SearchHandler lists the customer's orders with filters and pagination.
// GET /v1/orders?status=PAID&createdFrom=...&minAmount=...&offset=0&limit=50 - Returns 200 OK.
func (h *OrderHandler) SearchHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var query dto.SearchOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	orders, err := h.search.Execute(c.Request.Context(), query.ToSearchOrdersInput(principal.SubjectID, page)).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrdersToListResponse(orders))
}
