package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	GetRoomType(ctx context.Context, id int64) (*domain.RoomType, error)
	UpdatePrice(ctx context.Context, roomTypeID int64, price int64) (*domain.RoomType, error)
	SoftDelete(ctx context.Context, id int64) error
	CapacityLedger
}

// CapacityLedger owns the occupied/total counters of room types. Both
// operations are a single conditional write against one room type row.
type CapacityLedger interface {
	TryIncrement(ctx context.Context, roomTypeID int64) (*domain.RoomType, error)
	Decrement(ctx context.Context, roomTypeID int64) (*domain.RoomType, error)
}

type ReservationFilter struct {
	StudentID       string
	ListingID       int64
	IncludeArchived bool
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
	ListRepriceable(ctx context.Context, roomTypeID int64) ([]domain.Reservation, error)
	Apply(ctx context.Context, m Mutation) error
}

// Mutation is one atomic change to a reservation. The stored reservation must
// still be at ExpectedVersion and in Expected/ExpectedPayment, otherwise
// nothing is written and domain.ErrStaleWrite is returned. CapacityDelta, the
// ledger record, the ledger refund stamp and the audit entry are applied in
// the same unit. On success Reservation.Version holds the new version.
type Mutation struct {
	Reservation     *domain.Reservation
	Expected        domain.Status
	ExpectedPayment domain.PaymentStatus
	ExpectedVersion int64
	CapacityDelta   int
	Payment         *domain.Transaction
	RefundedAt      *time.Time
	Audit           *domain.AuditEntry
	Delete          bool
}

type TransactionRepository interface {
	GetByReservation(ctx context.Context, reservationID int64) (*domain.Transaction, error)
	List(ctx context.Context, limit int) ([]domain.Transaction, error)
}

type AuditFilter struct {
	TargetType string
	TargetID   string
	Limit      int
}

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}
