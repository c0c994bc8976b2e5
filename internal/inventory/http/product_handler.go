// Package http provides HTTP handlers for the product catalog.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/usecase"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
)

// ProductHandler handles catalog requests.
type ProductHandler struct {
	create operation.UseCase[usecase.CreateProductInput, *domain.Product]
	search operation.UseCase[database.Page, *database.PagedResult[*domain.Product]]
	logger *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(
	create operation.UseCase[usecase.CreateProductInput, *domain.Product],
	search operation.UseCase[database.Page, *database.PagedResult[*domain.Product]],
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{create: create, search: search, logger: logger}
}

// CreateHandler adds a product to the catalog.
// POST /v1/products - Requires an employee token. Returns 201 Created.
func (h *ProductHandler) CreateHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	product, err := h.create.Execute(c.Request.Context(), req.ToCreateProductInput(principal.SubjectID)).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapProductToResponse(product))
}

// SearchHandler lists products with pagination.
// GET /v1/products?offset=0&limit=50 - Returns 200 OK.
func (h *ProductHandler) SearchHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	products, err := h.search.Execute(c.Request.Context(), page).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProductsToListResponse(products))
}
