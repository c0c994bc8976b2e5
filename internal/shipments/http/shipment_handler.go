// Package http provides HTTP handlers for shipment operators.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/usecase"
)

// ShipmentHandler handles shipment requests of authenticated employees.
type ShipmentHandler struct {
	deliver operation.UseCase[usecase.MarkShipmentDeliveredInput, *domain.Shipment]
	logger  *zap.Logger
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(
	deliver operation.UseCase[usecase.MarkShipmentDeliveredInput, *domain.Shipment],
	logger *zap.Logger,
) *ShipmentHandler {
	return &ShipmentHandler{deliver: deliver, logger: logger}
}

// DeliveredHandler confirms the delivery of a shipment.
// POST /v1/shipments/:id/delivered - Requires an employee token. Returns 200 OK.
func (h *ShipmentHandler) DeliveredHandler(c *gin.Context) {
	in := usecase.MarkShipmentDeliveredInput{ShipmentID: c.Param("id")}
	shipment, err := h.deliver.Execute(c.Request.Context(), in).Unwrap()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapShipmentToResponse(shipment))
}
