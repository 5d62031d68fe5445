package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/gin-gonic/gin"
)

// ActorHeader carries the identity resolved by the upstream auth layer.
const ActorHeader = "X-Actor-ID"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrNoActiveDispute),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrNotPaid),
		errors.Is(err, domain.ErrStaleWrite),
		errors.Is(err, reservations.ErrPaymentInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := domain.Code(err)
	if errors.Is(err, reservations.ErrPaymentInProgress) {
		code = "payment_in_progress"
	}
	c.JSON(statusFor(err), errorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation_error"})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid " + name, Code: "validation_error"})
		return 0, false
	}
	return id, true
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
