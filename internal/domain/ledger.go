package domain

import "time"

// Transaction is the ledger record written once when a reservation is paid.
type Transaction struct {
	ID               int64
	ReservationID    int64
	HostelFee        int64
	AdminCommission  int64
	TotalAmount      int64
	PaymentReference string
	PaidAt           time.Time
	RefundedAt       *time.Time
}

type AuditAction string

const (
	AuditOverride       AuditAction = "reservation.override"
	AuditBulkOverride   AuditAction = "reservation.bulk_override"
	AuditDisputeOpen    AuditAction = "reservation.dispute_open"
	AuditDisputeResolve AuditAction = "reservation.dispute_resolve"
	AuditRefund         AuditAction = "reservation.refund"
	AuditPurge          AuditAction = "reservation.purge"
)

const (
	AuditTargetReservation = "reservation"
	AuditTargetBatch       = "reservation_batch"
)

type AuditEntry struct {
	ID         int64
	ActorID    string
	Action     AuditAction
	TargetType string
	TargetID   string
	Details    map[string]any
	CreatedAt  time.Time
}
