package kafka

import (
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
)

const (
	EventReservationSubmitted = "reservation_submitted"
	EventApprovedForPayment   = "reservation_approved_for_payment"
	EventRejected             = "reservation_rejected"
	EventPaymentConfirmed     = "reservation_payment_confirmed"
	EventApproved             = "reservation_approved"
	EventRepriced             = "reservation_repriced"
	EventOverridden           = "reservation_overridden"
	EventDisputeOpened        = "reservation_dispute_opened"
	EventDisputeResolved      = "reservation_dispute_resolved"
	EventRefunded             = "reservation_refunded"
	EventPurged               = "reservation_purged"
)

type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	ListingID     int64     `json:"listing_id"`
	RoomType      string    `json:"room_type"`
	StudentID     string    `json:"student_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   int64     `json:"total_amount"`
	AccessCode    string    `json:"access_code,omitempty"`
	Email         string    `json:"email"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *domain.Reservation) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		RoomType:      r.RoomType,
		StudentID:     r.StudentID,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		TotalAmount:   r.Fees.TotalAmount,
		AccessCode:    r.AccessCode,
		Email:         r.Contact.Email,
		OccurredAt:    time.Now().UTC(),
	}
}

// PaymentEvent is published by the payment provider integration once a
// reservation's payment has settled.
type PaymentEvent struct {
	ReservationID    int64  `json:"reservation_id"`
	PaymentReference string `json:"payment_reference"`
}
