package kafka

import (
	"encoding/json"
	"testing"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservationEvent(t *testing.T) {
	r := &domain.Reservation{
		ID:            9,
		ListingID:     3,
		RoomType:      "double",
		StudentID:     "stu-1",
		Status:        domain.StatusApproved,
		PaymentStatus: domain.PaymentPaid,
		Fees:          domain.Fees{HostelFee: 1000, AdminCommission: 30, TotalAmount: 1030},
		AccessCode:    "HST-ABC-1234",
		Contact:       domain.Contact{Email: "stu@example.com"},
	}

	event := NewReservationEvent(EventApproved, r)

	assert.Equal(t, EventApproved, event.Type)
	assert.Equal(t, int64(9), event.ReservationID)
	assert.Equal(t, "approved", event.Status)
	assert.Equal(t, "paid", event.PaymentStatus)
	assert.Equal(t, int64(1030), event.TotalAmount)
	assert.Equal(t, "stu@example.com", event.Email)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestPaymentEventDecoding(t *testing.T) {
	var event PaymentEvent
	require.NoError(t, json.Unmarshal([]byte(`{"reservation_id":12,"payment_reference":"PAY-77"}`), &event))
	assert.Equal(t, int64(12), event.ReservationID)
	assert.Equal(t, "PAY-77", event.PaymentReference)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	assert.NotNil(t, p.writer)
	assert.NoError(t, p.Close())
}
