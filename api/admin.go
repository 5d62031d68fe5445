package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
	"github.com/Domenick1991/hostelmarket/internal/service/admin"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admin.AdminUseCase
}

type overrideRequest struct {
	TargetStatus string `json:"target_status"`
	Reason       string `json:"reason"`
}

type bulkOverrideRequest struct {
	IDs    []int64 `json:"ids"`
	Action string  `json:"action"`
	Reason string  `json:"reason"`
}

type openDisputeRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

type resolveDisputeRequest struct {
	Resolution string  `json:"resolution"`
	NewStatus  *string `json:"new_status"`
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type transactionResponse struct {
	ID               int64  `json:"id"`
	ReservationID    int64  `json:"reservation_id"`
	HostelFee        int64  `json:"hostel_fee"`
	AdminCommission  int64  `json:"admin_commission"`
	TotalAmount      int64  `json:"total_amount"`
	PaymentReference string `json:"payment_reference"`
	PaidAt           string `json:"paid_at"`
	RefundedAt       string `json:"refunded_at,omitempty"`
}

type auditEntryResponse struct {
	ID         int64          `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  string         `json:"created_at"`
}

func NewAdminHandler(service admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/reservations/bulk", h.bulkOverride)
	router.POST("/reservations/:id/override", h.override)
	router.POST("/reservations/:id/dispute", h.openDispute)
	router.POST("/reservations/:id/dispute/resolve", h.resolveDispute)
	router.POST("/reservations/:id/refund", h.refund)
	router.DELETE("/reservations/:id", h.purge)
	router.GET("/transactions", h.transactions)
	router.GET("/audit", h.auditLog)
}

func (h *AdminHandler) override(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := h.service.Override(c.Request.Context(), c.GetHeader(ActorHeader), id, domain.Status(req.TargetStatus), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *AdminHandler) bulkOverride(c *gin.Context) {
	var req bulkOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	action, err := admin.ParseBulkAction(req.Action)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.BulkOverride(c.Request.Context(), c.GetHeader(ActorHeader), req.IDs, action, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) openDispute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req openDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := h.service.OpenDispute(c.Request.Context(), c.GetHeader(ActorHeader), id, req.Reason, req.Details)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *AdminHandler) resolveDispute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var newStatus *domain.Status
	if req.NewStatus != nil {
		status := domain.Status(*req.NewStatus)
		newStatus = &status
	}

	reservation, err := h.service.ResolveDispute(c.Request.Context(), c.GetHeader(ActorHeader), id, req.Resolution, newStatus)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *AdminHandler) refund(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := h.service.Refund(c.Request.Context(), c.GetHeader(ActorHeader), id, req.Amount, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *AdminHandler) purge(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Purge(c.Request.Context(), c.GetHeader(ActorHeader), id, c.Query("reason")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	txs, err := h.service.Transactions(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			ID:               tx.ID,
			ReservationID:    tx.ReservationID,
			HostelFee:        tx.HostelFee,
			AdminCommission:  tx.AdminCommission,
			TotalAmount:      tx.TotalAmount,
			PaymentReference: tx.PaymentReference,
			PaidAt:           tx.PaidAt.Format(time.RFC3339),
			RefundedAt:       formatTime(tx.RefundedAt),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) auditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.service.AuditLog(c.Request.Context(), repository.AuditFilter{
		TargetType: c.Query("target_type"),
		TargetID:   c.Query("target_id"),
		Limit:      limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}
