package api

import (
	"net/http"

	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/gin-gonic/gin"
)

// PaymentHandler receives settlement callbacks from the payment provider.
type PaymentHandler struct {
	service reservations.ReservationUseCase
}

type paymentConfirmationRequest struct {
	ReservationID    int64  `json:"reservation_id"`
	PaymentReference string `json:"payment_reference"`
}

func NewPaymentHandler(service reservations.ReservationUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/confirmations", h.confirm)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var req paymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := h.service.ConfirmPayment(c.Request.Context(), req.ReservationID, req.PaymentReference)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}
