package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	operationMocks "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation/mocks"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/http/dto"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shipments/usecase"
)

func setupTestHandler(t *testing.T) (
	*ShipmentHandler,
	*operationMocks.MockUseCase[usecase.MarkShipmentDeliveredInput, *domain.Shipment],
) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	deliver := &operationMocks.MockUseCase[usecase.MarkShipmentDeliveredInput, *domain.Shipment]{}
	return NewShipmentHandler(deliver, zap.NewNop()), deliver
}

func createTestContext(id string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/shipments/"+id+"/delivered", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c, w
}

func TestShipmentHandler_DeliveredHandler(t *testing.T) {
	shipmentID := identifier.New(identifier.Shipment)

	t.Run("Success", func(t *testing.T) {
		handler, deliver := setupTestHandler(t)
		deliveredAt := time.Now().UTC()
		deliver.On("Execute", mock.Anything, usecase.MarkShipmentDeliveredInput{ShipmentID: shipmentID.String()}).
			Return(&domain.Shipment{ID: shipmentID, Status: domain.StatusDelivered, DeliveredAt: &deliveredAt}, nil).
			Once()

		c, w := createTestContext(shipmentID.String())
		handler.DeliveredHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ShipmentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "DELIVERED", response.Status)
		require.NotNil(t, response.DeliveredAt)
		deliver.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, deliver := setupTestHandler(t)
		deliver.On("Execute", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(domain.ErrShipmentNotFound, "shipment")).Once()

		c, w := createTestContext(shipmentID.String())
		handler.DeliveredHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_MalformedID", func(t *testing.T) {
		handler, deliver := setupTestHandler(t)
		deliver.On("Execute", mock.Anything, mock.Anything).
			Return(nil, &apperrors.InvalidIDError{Raw: "7", Model: "shipment"}).Once()

		c, w := createTestContext("7")
		handler.DeliveredHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
