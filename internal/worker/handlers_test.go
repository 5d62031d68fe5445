package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) ConfirmPayment(ctx context.Context, id int64, reference string) (*domain.Reservation, error) {
	args := m.Called(ctx, id, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, event kafka.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const lockTTL = 5 * time.Millisecond

func paymentMessage(t *testing.T, id int64, reference string) kafkaGo.Message {
	t.Helper()
	value, err := json.Marshal(kafka.PaymentEvent{ReservationID: id, PaymentReference: reference})
	assert.NoError(t, err)
	return kafkaGo.Message{Topic: "payments", Value: value}
}

func TestPaymentHandler(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		result  *domain.Reservation
		err     error
		wantErr bool
	}{
		{"confirmed", &domain.Reservation{ID: 1, Status: domain.StatusPaidAwaitingFinal}, nil, false},
		{"wrong status", nil, &domain.TransitionError{From: domain.StatusPending, Action: "confirm_payment"}, false},
		{"unknown reservation", nil, &domain.NotFoundError{Kind: "reservation", ID: int64(1)}, false},
		{"database down", nil, errors.New("connection refused"), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			confirmer := &MockConfirmer{}
			confirmer.On("ConfirmPayment", ctx, int64(1), "PAY-1").Return(tc.result, tc.err).Once()

			err := PaymentHandler(confirmer, lockTTL)(ctx, paymentMessage(t, 1, "PAY-1"))
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			confirmer.AssertExpectations(t)
		})
	}
}

func TestPaymentHandler_WaitsForLockHolder(t *testing.T) {
	ctx := context.Background()
	confirmer := &MockConfirmer{}
	confirmer.On("ConfirmPayment", ctx, int64(1), "PAY-1").Return(nil, reservations.ErrPaymentInProgress).Twice()
	confirmer.On("ConfirmPayment", ctx, int64(1), "PAY-1").
		Return(&domain.Reservation{ID: 1, Status: domain.StatusPaidAwaitingFinal}, nil).Once()

	err := PaymentHandler(confirmer, lockTTL)(ctx, paymentMessage(t, 1, "PAY-1"))

	assert.NoError(t, err)
	confirmer.AssertNumberOfCalls(t, "ConfirmPayment", 3)
}

func TestPaymentHandler_LockNeverReleasedKeepsMessage(t *testing.T) {
	ctx := context.Background()
	confirmer := &MockConfirmer{}
	confirmer.On("ConfirmPayment", ctx, int64(1), "PAY-1").Return(nil, reservations.ErrPaymentInProgress)

	err := PaymentHandler(confirmer, lockTTL)(ctx, paymentMessage(t, 1, "PAY-1"))

	assert.ErrorIs(t, err, reservations.ErrPaymentInProgress)
	confirmer.AssertNumberOfCalls(t, "ConfirmPayment", busyRetries+1)
}

func TestPaymentHandler_StopsWaitingOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	confirmer := &MockConfirmer{}
	confirmer.On("ConfirmPayment", ctx, int64(1), "PAY-1").Run(func(mock.Arguments) { cancel() }).
		Return(nil, reservations.ErrPaymentInProgress).Once()

	err := PaymentHandler(confirmer, time.Hour)(ctx, paymentMessage(t, 1, "PAY-1"))

	assert.ErrorIs(t, err, context.Canceled)
	confirmer.AssertExpectations(t)
}

func TestPaymentHandler_MalformedMessage(t *testing.T) {
	confirmer := &MockConfirmer{}

	err := PaymentHandler(confirmer, lockTTL)(context.Background(), kafkaGo.Message{Value: []byte("{")})

	assert.NoError(t, err)
	confirmer.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationHandler(t *testing.T) {
	ctx := context.Background()
	notifier := &MockNotifier{}
	event := kafka.ReservationEvent{Type: kafka.EventApproved, ReservationID: 3, Email: "stu@example.com"}
	value, _ := json.Marshal(event)

	notifier.On("Send", ctx, mock.MatchedBy(func(e kafka.ReservationEvent) bool {
		return e.ReservationID == 3 && e.Type == kafka.EventApproved
	})).Return(nil).Once()

	assert.NoError(t, NotificationHandler(notifier)(ctx, kafkaGo.Message{Value: value}))
	notifier.AssertExpectations(t)
}
