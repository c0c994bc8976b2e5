// Package http provides HTTP handlers for billings and the payment gateway webhook.
package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authHTTP "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/http"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/payments/usecase"
)

// WebhookSecretHeader carries the shared secret of gateway notifications.
const WebhookSecretHeader = "X-Webhook-Secret"

// BillingHandler handles billing queries and gateway notifications.
type BillingHandler struct {
	search        operation.UseCase[usecase.SearchBillingsInput, *database.PagedResult[*domain.Billing]]
	confirm       operation.UseCase[usecase.ConfirmPaymentInput, *domain.Billing]
	webhookSecret string
	logger        *zap.Logger
}

// NewBillingHandler creates a new BillingHandler. An empty webhookSecret rejects every
// notification.
func NewBillingHandler(
	search operation.UseCase[usecase.SearchBillingsInput, *database.PagedResult[*domain.Billing]],
	confirm operation.UseCase[usecase.ConfirmPaymentInput, *domain.Billing],
	webhookSecret string,
	logger *zap.Logger,
) *BillingHandler {
	return &BillingHandler{search: search, confirm: confirm, webhookSecret: webhookSecret, logger: logger}
}

// SearchHandler lists the customer's billings with filters and pagination.
// GET /v1/billings?status=PAID&offset=0&limit=50 - Requires a customer token. Returns 200 OK.
func (h *BillingHandler) SearchHandler(c *gin.Context) {
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

	var query dto.SearchBillingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	billings, err := h.search.Execute(c.Request.Context(), query.ToSearchBillingsInput(principal.SubjectID, page)).
		Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBillingsToListResponse(billings))
}

// WebhookHandler records a payment notified by the gateway.
// POST /v1/billings/webhook - Requires the X-Webhook-Secret header. Returns 200 OK.
func (h *BillingHandler) WebhookHandler(c *gin.Context) {
	if !h.authorized(c.GetHeader(WebhookSecretHeader)) {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid webhook secret"), h.logger)
		return
	}

	var req dto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	billing, err := h.confirm.Execute(c.Request.Context(), req.ToConfirmPaymentInput()).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBillingToResponse(billing))
}

func (h *BillingHandler) authorized(secret string) bool {
	if h.webhookSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) == 1
}
