package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReservationUseCase is a mock implementation of reservations.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) reservation(args mock.Arguments) (*domain.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Submit(ctx context.Context, input reservations.SubmitInput) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, input))
}

func (m *MockReservationUseCase) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationUseCase) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Transition(ctx context.Context, id int64, action domain.Action) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id, action))
}

func (m *MockReservationUseCase) ConfirmPayment(ctx context.Context, id int64, reference string) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id, reference))
}

func (m *MockReservationUseCase) Recalculate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationUseCase) RepriceRoomType(ctx context.Context, roomTypeID int64) (int, error) {
	args := m.Called(ctx, roomTypeID)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationUseCase) Archive(ctx context.Context, id int64, archived bool) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id, archived))
}

func newTestContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func sampleReservation(status domain.Status) *domain.Reservation {
	return &domain.Reservation{
		ID:            7,
		ListingID:     1,
		RoomTypeID:    2,
		RoomType:      "single",
		StudentID:     "stu-1",
		Semester:      "2026-fall",
		Contact:       domain.Contact{Email: "stu@example.com"},
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		Fees:          domain.Fees{HostelFee: 1000, AdminCommission: 30, TotalAmount: 1030},
		Refund:        domain.Refund{Status: domain.RefundNotApplicable},
		CreatedAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestReservationHandler_submit(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/reservations", map[string]any{
		"listing_id": 1,
		"room_type":  "single",
		"student_id": "stu-1",
		"semester":   "2026-fall",
		"contact":    map[string]string{"name": "Ada", "email": "stu@example.com"},
	})

	input := reservations.SubmitInput{
		ListingID: 1,
		RoomType:  "single",
		StudentID: "stu-1",
		Semester:  "2026-fall",
		Contact:   domain.Contact{Name: "Ada", Email: "stu@example.com"},
	}
	mockService.On("Submit", c.Request.Context(), input).Return(sampleReservation(domain.StatusPending), nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response reservationResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), response.ID)
	assert.Equal(t, "pending", response.Status)
	assert.Equal(t, int64(1030), response.Fees.TotalAmount)
	assert.Equal(t, "2026-08-01T10:00:00Z", response.CreatedAt)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_submitNotFound(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/reservations", map[string]any{"listing_id": 99})
	mockService.On("Submit", c.Request.Context(), mock.Anything).
		Return(nil, &domain.NotFoundError{Kind: "listing", ID: int64(99)})

	handler.submit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_found", response.Code)
}

func TestReservationHandler_transition(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/reservations/7/transitions", transitionRequest{Action: "final_approve"})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	approved := sampleReservation(domain.StatusApproved)
	approved.AccessCode = "HST-ABC-1234ABCD"
	mockService.On("Transition", c.Request.Context(), int64(7), domain.ActionFinalApprove).Return(approved, nil)

	handler.transition(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response reservationResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "approved", response.Status)
	assert.Equal(t, "HST-ABC-1234ABCD", response.AccessCode)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_transitionCapacityExceeded(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/reservations/7/transitions", transitionRequest{Action: "final_approve"})
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	mockService.On("Transition", c.Request.Context(), int64(7), domain.ActionFinalApprove).
		Return(nil, &domain.CapacityError{RoomTypeID: 2})

	handler.transition(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "capacity_exceeded", response.Code)
}

func TestReservationHandler_transitionUnknownAction(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/reservations/7/transitions", transitionRequest{Action: "teleport"})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.transition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationHandler_getInvalidID(t *testing.T) {
	handler := NewReservationHandler(&MockReservationUseCase{})

	c, w := newTestContext("GET", "/reservations/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_list(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("GET", "/reservations?student_id=stu-1&listing_id=1&include_archived=true", nil)
	filter := repository.ReservationFilter{StudentID: "stu-1", ListingID: 1, IncludeArchived: true}
	mockService.On("List", c.Request.Context(), filter).
		Return([]domain.Reservation{*sampleReservation(domain.StatusPending)}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []reservationResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	mockService.AssertExpectations(t)
}

func TestReservationHandler_archive(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("PUT", "/reservations/7/archive", archiveRequest{Archived: true})
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	archived := sampleReservation(domain.StatusRejected)
	archived.IsArchived = true
	mockService.On("Archive", c.Request.Context(), int64(7), true).Return(archived, nil)

	handler.archive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response reservationResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.IsArchived)
}

func TestPaymentHandler_confirm(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := newTestContext("POST", "/payments/confirmations", paymentConfirmationRequest{ReservationID: 7, PaymentReference: "PAY-1"})
	paid := sampleReservation(domain.StatusPaidAwaitingFinal)
	paid.PaymentStatus = domain.PaymentPaid
	paid.PaymentReference = "PAY-1"
	mockService.On("ConfirmPayment", c.Request.Context(), int64(7), "PAY-1").Return(paid, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response reservationResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "paid", response.PaymentStatus)
	assert.Equal(t, "PAY-1", response.PaymentReference)
}

func TestPaymentHandler_confirmInProgress(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := newTestContext("POST", "/payments/confirmations", paymentConfirmationRequest{ReservationID: 7, PaymentReference: "PAY-1"})
	mockService.On("ConfirmPayment", c.Request.Context(), int64(7), "PAY-1").Return(nil, reservations.ErrPaymentInProgress)

	handler.confirm(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "payment_in_progress", response.Code)
}
