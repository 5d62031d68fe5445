package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{domain.Required("reason"), http.StatusBadRequest},
		{fmt.Errorf("fee: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{&domain.NotFoundError{Kind: "reservation", ID: 1}, http.StatusNotFound},
		{&domain.TransitionError{From: domain.StatusPending, Action: "final_approve"}, http.StatusConflict},
		{&domain.CapacityError{RoomTypeID: 1}, http.StatusConflict},
		{domain.ErrNoActiveDispute, http.StatusConflict},
		{domain.ErrAlreadyPaid, http.StatusConflict},
		{domain.ErrNotPaid, http.StatusConflict},
		{reservations.ErrPaymentInProgress, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.status, statusFor(tc.err))
		})
	}
}
