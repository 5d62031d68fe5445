package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	kafkaGo "github.com/segmentio/kafka-go"
)

type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, id int64, reference string) (*domain.Reservation, error)
}

type Notifier interface {
	Send(ctx context.Context, event kafka.ReservationEvent) error
}

// busyRetries spreads retries of a locked payment over one lock TTL, so the
// last attempt runs after the holder's lock has been released or expired.
const busyRetries = 5

// PaymentHandler turns payment settlement messages into confirmations.
// Messages that can never succeed are logged and acknowledged; any other
// error, including a payment lock that outlives its TTL, is returned so the
// offset is not committed.
func PaymentHandler(confirmer PaymentConfirmer, lockTTL time.Duration) func(context.Context, kafkaGo.Message) error {
	wait := lockTTL / busyRetries
	return func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.PaymentEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode payment event error: %v", err)
			return nil
		}

		for attempt := 0; ; attempt++ {
			reservation, err := confirmer.ConfirmPayment(ctx, event.ReservationID, event.PaymentReference)
			switch {
			case err == nil:
				log.Printf("payment %s confirmed for reservation %d (%s)", event.PaymentReference, reservation.ID, reservation.Status)
				return nil
			case errors.Is(err, reservations.ErrPaymentInProgress):
				if attempt == busyRetries {
					return fmt.Errorf("payment %s: %w", event.PaymentReference, err)
				}
				log.Printf("payment %s locked by another delivery, retrying in %s", event.PaymentReference, wait)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			case domain.IsClientError(err):
				log.Printf("WARNING: drop payment %s for reservation %d: %v", event.PaymentReference, event.ReservationID, err)
				return nil
			default:
				return err
			}
		}
	}
}

func NotificationHandler(notifier Notifier) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.ReservationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode event error: %v", err)
			return nil
		}
		return notifier.Send(ctx, event)
	}
}
