package domain

import "time"

type Status string

const (
	StatusPending            Status = "pending"
	StatusApprovedForPayment Status = "approved_for_payment"
	StatusRejected           Status = "rejected"
	StatusPaidAwaitingFinal  Status = "paid_awaiting_final"
	StatusApproved           Status = "approved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApprovedForPayment, StatusRejected, StatusPaidAwaitingFinal, StatusApproved:
		return true
	}
	return false
}

// Terminal reports whether no student or operator action leaves s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusApproved
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type DisputeStatus string

const (
	DisputeNone        DisputeStatus = ""
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
)

type RefundStatus string

const (
	RefundNotApplicable RefundStatus = "not_applicable"
	RefundCompleted     RefundStatus = "completed"
)

// Fees is the financial snapshot of a reservation, in the currency's smallest unit.
type Fees struct {
	HostelFee       int64
	AdminCommission int64
	TotalAmount     int64
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Dispute struct {
	HasDispute bool
	Status     DisputeStatus
	Reason     string
	Details    string
	Resolution string
	OpenedBy   string
	OpenedAt   *time.Time
	ResolvedBy string
	ResolvedAt *time.Time
}

type Override struct {
	Applied   bool
	Reason    string
	By        string
	Timestamp *time.Time
}

type Refund struct {
	Status     RefundStatus
	Amount     int64
	Reason     string
	RefundedBy string
	RefundedAt *time.Time
}

// Reservation is a student's application for a slot in a listing's room type.
type Reservation struct {
	ID               int64
	ListingID        int64
	RoomTypeID       int64
	RoomType         string
	StudentID        string
	Semester         string
	Contact          Contact
	Status           Status
	PaymentStatus    PaymentStatus
	Fees             Fees
	PaymentReference string
	PaidAt           *time.Time
	AccessCode       string
	ApprovedAt       *time.Time
	IsArchived       bool
	Dispute          Dispute
	Override         Override
	Refund           Refund
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repriceable reports whether the financial snapshot may still follow the room price.
func (r *Reservation) Repriceable() bool {
	return (r.Status == StatusPending || r.Status == StatusApprovedForPayment) &&
		r.PaymentStatus == PaymentPending
}
