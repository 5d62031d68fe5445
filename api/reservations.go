package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservations.ReservationUseCase
}

type submitReservationRequest struct {
	ListingID int64  `json:"listing_id"`
	RoomType  string `json:"room_type"`
	StudentID string `json:"student_id"`
	Semester  string `json:"semester"`
	Contact   struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact"`
}

type transitionRequest struct {
	Action string `json:"action"`
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

type feesResponse struct {
	HostelFee       int64 `json:"hostel_fee"`
	AdminCommission int64 `json:"admin_commission"`
	TotalAmount     int64 `json:"total_amount"`
}

type disputeResponse struct {
	HasDispute bool   `json:"has_dispute"`
	Status     string `json:"status,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Details    string `json:"details,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

type overrideResponse struct {
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
	By        string `json:"by,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type refundResponse struct {
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason,omitempty"`
	RefundedBy string `json:"refunded_by,omitempty"`
	RefundedAt string `json:"refunded_at,omitempty"`
}

type reservationResponse struct {
	ID               int64            `json:"id"`
	ListingID        int64            `json:"listing_id"`
	RoomType         string           `json:"room_type"`
	StudentID        string           `json:"student_id"`
	Semester         string           `json:"semester"`
	Email            string           `json:"email"`
	Status           string           `json:"status"`
	PaymentStatus    string           `json:"payment_status"`
	Fees             feesResponse     `json:"fees"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	PaidAt           string           `json:"paid_at,omitempty"`
	AccessCode       string           `json:"access_code,omitempty"`
	ApprovedAt       string           `json:"approved_at,omitempty"`
	IsArchived       bool             `json:"is_archived"`
	Dispute          disputeResponse  `json:"dispute"`
	Override         overrideResponse `json:"override"`
	Refund           refundResponse   `json:"refund"`
	CreatedAt        string           `json:"created_at"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:            r.ID,
		ListingID:     r.ListingID,
		RoomType:      r.RoomType,
		StudentID:     r.StudentID,
		Semester:      r.Semester,
		Email:         r.Contact.Email,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		Fees: feesResponse{
			HostelFee:       r.Fees.HostelFee,
			AdminCommission: r.Fees.AdminCommission,
			TotalAmount:     r.Fees.TotalAmount,
		},
		PaymentReference: r.PaymentReference,
		PaidAt:           formatTime(r.PaidAt),
		AccessCode:       r.AccessCode,
		ApprovedAt:       formatTime(r.ApprovedAt),
		IsArchived:       r.IsArchived,
		Dispute: disputeResponse{
			HasDispute: r.Dispute.HasDispute,
			Status:     string(r.Dispute.Status),
			Reason:     r.Dispute.Reason,
			Details:    r.Dispute.Details,
			Resolution: r.Dispute.Resolution,
			ResolvedBy: r.Dispute.ResolvedBy,
			ResolvedAt: formatTime(r.Dispute.ResolvedAt),
		},
		Override: overrideResponse{
			Applied:   r.Override.Applied,
			Reason:    r.Override.Reason,
			By:        r.Override.By,
			Timestamp: formatTime(r.Override.Timestamp),
		},
		Refund: refundResponse{
			Status:     string(r.Refund.Status),
			Amount:     r.Refund.Amount,
			Reason:     r.Refund.Reason,
			RefundedBy: r.Refund.RefundedBy,
			RefundedAt: formatTime(r.Refund.RefundedAt),
		},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func NewReservationHandler(service reservations.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.submit)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/transitions", h.transition)
	router.POST("/:id/recalculate", h.recalculate)
	router.PUT("/:id/archive", h.archive)
}

func (h *ReservationHandler) submit(c *gin.Context) {
	var req submitReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := h.service.Submit(c.Request.Context(), reservations.SubmitInput{
		ListingID: req.ListingID,
		RoomType:  req.RoomType,
		StudentID: req.StudentID,
		Semester:  req.Semester,
		Contact:   domain.Contact{Name: req.Contact.Name, Email: req.Contact.Email, Phone: req.Contact.Phone},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(reservation))
}

func (h *ReservationHandler) list(c *gin.Context) {
	filter := repository.ReservationFilter{
		StudentID:       c.Query("student_id"),
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if raw := c.Query("listing_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid listing_id", Code: "validation_error"})
			return
		}
		filter.ListingID = id
	}

	found, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]reservationResponse, 0, len(found))
	for i := range found {
		out = append(out, toReservationResponse(&found[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *ReservationHandler) transition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeError(c, err)
		return
	}

	reservation, err := h.service.Transition(c.Request.Context(), id, action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *ReservationHandler) recalculate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.service.Recalculate(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *ReservationHandler) archive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reservation, err := h.service.Archive(c.Request.Context(), id, req.Archived)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}
