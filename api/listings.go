package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/service/listings"
	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	service listings.ListingUseCase
}

type updatePriceRequest struct {
	Price int64 `json:"price"`
}

type roomTypeResponse struct {
	ID                int64  `json:"id"`
	Tag               string `json:"tag"`
	Price             int64  `json:"price"`
	TotalCapacity     int    `json:"total_capacity"`
	OccupiedCapacity  int    `json:"occupied_capacity"`
	AvailableCapacity int    `json:"available_capacity"`
}

type listingResponse struct {
	ID         int64              `json:"id"`
	OperatorID string             `json:"operator_id"`
	Name       string             `json:"name"`
	RoomTypes  []roomTypeResponse `json:"room_types"`
	CreatedAt  string             `json:"created_at"`
}

type priceChangeResponse struct {
	RoomType     roomTypeResponse `json:"room_type"`
	Repriced     int              `json:"repriced"`
	RepriceError string           `json:"reprice_error,omitempty"`
}

func toRoomTypeResponse(rt domain.RoomType) roomTypeResponse {
	return roomTypeResponse{
		ID:                rt.ID,
		Tag:               rt.Tag,
		Price:             rt.Price,
		TotalCapacity:     rt.TotalCapacity,
		OccupiedCapacity:  rt.OccupiedCapacity,
		AvailableCapacity: rt.Free(),
	}
}

func toListingResponse(l *domain.Listing) listingResponse {
	rooms := make([]roomTypeResponse, 0, len(l.RoomTypes))
	for _, rt := range l.RoomTypes {
		rooms = append(rooms, toRoomTypeResponse(rt))
	}
	return listingResponse{
		ID:         l.ID,
		OperatorID: l.OperatorID,
		Name:       l.Name,
		RoomTypes:  rooms,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
}

func NewListingHandler(service listings.ListingUseCase) *ListingHandler {
	return &ListingHandler{service: service}
}

func (h *ListingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/rooms/:tag/price", h.updatePrice)
	router.DELETE("/:id", h.delete)
}

func (h *ListingHandler) create(c *gin.Context) {
	var req listings.CreateListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	listing, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	listing, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) updatePrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	change, err := h.service.UpdateRoomPrice(c.Request.Context(), id, c.Param("tag"), req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := priceChangeResponse{RoomType: toRoomTypeResponse(change.RoomType), Repriced: change.Repriced}
	if change.RepriceError != nil {
		resp.RepriceError = change.RepriceError.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
