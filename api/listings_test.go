package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/service/listings"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockListingUseCase is a mock implementation of listings.ListingUseCase
type MockListingUseCase struct {
	mock.Mock
}

func (m *MockListingUseCase) Create(ctx context.Context, input listings.CreateListingInput) (*domain.Listing, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingUseCase) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingUseCase) UpdateRoomPrice(ctx context.Context, listingID int64, tag string, price int64) (*listings.PriceChange, error) {
	args := m.Called(ctx, listingID, tag, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listings.PriceChange), args.Error(1)
}

func (m *MockListingUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestListingHandler_create(t *testing.T) {
	mockService := &MockListingUseCase{}
	handler := NewListingHandler(mockService)

	input := listings.CreateListingInput{
		OperatorID: "op-1",
		Name:       "Riverside",
		RoomTypes:  []listings.RoomTypeInput{{Tag: "single", Price: 1000, TotalCapacity: 3}},
	}
	c, w := newTestContext("POST", "/listings", input)

	created := &domain.Listing{
		ID:         1,
		OperatorID: "op-1",
		Name:       "Riverside",
		RoomTypes:  []domain.RoomType{{ID: 2, ListingID: 1, Tag: "single", Price: 1000, TotalCapacity: 3, OccupiedCapacity: 1}},
	}
	mockService.On("Create", c.Request.Context(), input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response listingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.ID)
	assert.Len(t, response.RoomTypes, 1)
	assert.Equal(t, 2, response.RoomTypes[0].AvailableCapacity)

	mockService.AssertExpectations(t)
}

func TestListingHandler_getNotFound(t *testing.T) {
	mockService := &MockListingUseCase{}
	handler := NewListingHandler(mockService)

	c, w := newTestContext("GET", "/listings/4", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	mockService.On("Get", c.Request.Context(), int64(4)).Return(nil, &domain.NotFoundError{Kind: "listing", ID: int64(4)})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingHandler_updatePrice(t *testing.T) {
	mockService := &MockListingUseCase{}
	handler := NewListingHandler(mockService)

	c, w := newTestContext("PUT", "/listings/1/rooms/single/price", updatePriceRequest{Price: 1200})
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "tag", Value: "single"}}
	change := &listings.PriceChange{
		RoomType:     domain.RoomType{ID: 2, Tag: "single", Price: 1200, TotalCapacity: 3},
		Repriced:     4,
		RepriceError: errors.New("reservation 9: timeout"),
	}
	mockService.On("UpdateRoomPrice", c.Request.Context(), int64(1), "single", int64(1200)).Return(change, nil)

	handler.updatePrice(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response priceChangeResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1200), response.RoomType.Price)
	assert.Equal(t, 4, response.Repriced)
	assert.Equal(t, "reservation 9: timeout", response.RepriceError)
}

func TestListingHandler_delete(t *testing.T) {
	mockService := &MockListingUseCase{}
	handler := NewListingHandler(mockService)

	c, _ := newTestContext("DELETE", "/listings/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	mockService.On("Delete", c.Request.Context(), int64(1)).Return(nil)

	handler.delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	mockService.AssertExpectations(t)
}
