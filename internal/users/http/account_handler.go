// Package http provides HTTP handlers for customer and employee accounts.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/usecase"
)

// AccountHandler handles registration, login and profile requests for one account kind.
type AccountHandler struct {
	register     operation.UseCase[usecase.RegisterInput, *domain.Account]
	authenticate operation.UseCase[usecase.Credentials, *usecase.Session]
	get          operation.UseCase[identifier.ID, *domain.Account]
	logger       *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	register operation.UseCase[usecase.RegisterInput, *domain.Account],
	authenticate operation.UseCase[usecase.Credentials, *usecase.Session],
	get operation.UseCase[identifier.ID, *domain.Account],
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		register:     register,
		authenticate: authenticate,
		get:          get,
		logger:       logger,
	}
}

// RegisterHandler creates an account.
// POST /v1/customers, POST /v1/employees - Returns 201 Created.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterAccountRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	account, err := h.register.Execute(c.Request.Context(), req.ToRegisterInput()).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAccountToResponse(account))
}

// CreateSessionHandler exchanges credentials for an access token.
// POST /v1/customers/sessions, POST /v1/employees/sessions - Returns 201 Created.
func (h *AccountHandler) CreateSessionHandler(c *gin.Context) {
	var req dto.CreateSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	session, err := h.authenticate.Execute(c.Request.Context(), req.ToCredentials()).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSessionToResponse(session))
}

// MeHandler returns the account of the authenticated principal.
// GET /v1/customers/me - Requires a customer token.
func (h *AccountHandler) MeHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	account, err := h.get.Execute(c.Request.Context(), principal.SubjectID).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccountToResponse(account))
}
