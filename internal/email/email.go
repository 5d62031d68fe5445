package email

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/hostelmarket/internal/kafka"
)

type Sender struct {
	from string
}

func NewSender(from string) *Sender {
	return &Sender{from: from}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Email == "" {
		log.Printf("skip %s for reservation %d: no contact email", event.Type, event.ReservationID)
		return nil
	}
	subject, body := Compose(event)
	fmt.Printf("send email from %s to %s: %s\n%s\n", s.from, event.Email, subject, body)
	return nil
}

// Compose renders the notification text for a lifecycle event.
func Compose(event kafka.ReservationEvent) (subject, body string) {
	switch event.Type {
	case kafka.EventReservationSubmitted:
		return "Reservation received", fmt.Sprintf("Your request for a %s room (reservation %d) is awaiting the hostel's review.", event.RoomType, event.ReservationID)
	case kafka.EventApprovedForPayment:
		return "Ready for payment", fmt.Sprintf("Reservation %d was accepted. Amount due: %d.", event.ReservationID, event.TotalAmount)
	case kafka.EventPaymentConfirmed:
		return "Payment received", fmt.Sprintf("We received your payment for reservation %d. The hostel will allocate your room shortly.", event.ReservationID)
	case kafka.EventApproved:
		return "Room allocated", fmt.Sprintf("Reservation %d is confirmed. Your access code is %s.", event.ReservationID, event.AccessCode)
	case kafka.EventRejected:
		return "Reservation declined", fmt.Sprintf("Reservation %d was declined.", event.ReservationID)
	case kafka.EventRefunded:
		return "Refund issued", fmt.Sprintf("A refund was issued for reservation %d.", event.ReservationID)
	default:
		return "Reservation update", fmt.Sprintf("Reservation %d is now %s.", event.ReservationID, event.Status)
	}
}
