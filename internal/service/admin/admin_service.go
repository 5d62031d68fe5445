package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/accesscode"
	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/repository"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
)

const maxStaleRetries = 3

type AdminUseCase interface {
	Override(ctx context.Context, actorID string, id int64, target domain.Status, reason string) (*domain.Reservation, error)
	BulkOverride(ctx context.Context, actorID string, ids []int64, action BulkAction, reason string) (*BatchResult, error)
	OpenDispute(ctx context.Context, actorID string, id int64, reason, details string) (*domain.Reservation, error)
	ResolveDispute(ctx context.Context, actorID string, id int64, resolution string, newStatus *domain.Status) (*domain.Reservation, error)
	Refund(ctx context.Context, actorID string, id int64, amount int64, reason string) (*domain.Reservation, error)
	Purge(ctx context.Context, actorID string, id int64, reason string) error
	Transactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	AuditLog(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error)
}

type Cache interface {
	InvalidateListing(ctx context.Context, id int64) error
}

// Service carries every administrative write. All status changes go through
// domain.CapacityDelta and are audited in the same unit as the change.
type Service struct {
	reservations       repository.ReservationRepository
	listings           repository.ListingRepository
	transactions       repository.TransactionRepository
	audit              repository.AuditRepository
	codes              *accesscode.Generator
	cache              Cache
	producer           reservations.Producer
	eventsTopic        string
	notificationsTopic string
	now                func() time.Time
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithProducer(producer reservations.Producer, eventsTopic, notificationsTopic string) Option {
	return func(s *Service) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	reservationRepo repository.ReservationRepository,
	listingRepo repository.ListingRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	codes *accesscode.Generator,
	opts ...Option,
) *Service {
	s := &Service{
		reservations: reservationRepo,
		listings:     listingRepo,
		transactions: transactionRepo,
		audit:        auditRepo,
		codes:        codes,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Override forces a reservation into approved or rejected.
func (s *Service) Override(ctx context.Context, actorID string, id int64, target domain.Status, reason string) (*domain.Reservation, error) {
	if err := requireActor(actorID, reason); err != nil {
		return nil, err
	}
	if target != domain.StatusApproved && target != domain.StatusRejected {
		return nil, &domain.ValidationError{Field: "target_status", Message: "must be approved or rejected"}
	}
	return s.override(ctx, actorID, id, target, reason, nil)
}

func (s *Service) override(ctx context.Context, actorID string, id int64, target domain.Status, reason string, extra map[string]any) (*domain.Reservation, error) {
	var delta int
	updated, err := s.mutate(ctx, id, func(current *domain.Reservation) (repository.Mutation, error) {
		if _, err := s.activeListing(ctx, current.ListingID); err != nil {
			return repository.Mutation{}, err
		}
		now := s.now()
		next := *current
		delta = s.moveTo(&next, target, now)
		next.Override = domain.Override{Applied: true, Reason: reason, By: actorID, Timestamp: &now}

		details := map[string]any{
			"from":           string(current.Status),
			"to":             string(target),
			"reason":         reason,
			"capacity_delta": delta,
		}
		for k, v := range extra {
			details[k] = v
		}
		return repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			CapacityDelta:   delta,
			Audit:           s.entry(actorID, domain.AuditOverride, id, details),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if delta != 0 {
		s.invalidateListing(ctx, updated.ListingID)
	}
	s.publish(ctx, kafka.EventOverridden, updated)
	return updated, nil
}

func (s *Service) OpenDispute(ctx context.Context, actorID string, id int64, reason, details string) (*domain.Reservation, error) {
	if err := requireActor(actorID, reason); err != nil {
		return nil, err
	}

	updated, err := s.mutate(ctx, id, func(current *domain.Reservation) (repository.Mutation, error) {
		now := s.now()
		next := *current
		next.Dispute = domain.Dispute{
			HasDispute: true,
			Status:     domain.DisputeUnderReview,
			Reason:     reason,
			Details:    details,
			OpenedBy:   actorID,
			OpenedAt:   &now,
		}
		return repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			Audit: s.entry(actorID, domain.AuditDisputeOpen, id, map[string]any{
				"reason":  reason,
				"details": details,
				"status":  string(current.Status),
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventDisputeOpened, updated)
	return updated, nil
}

// ResolveDispute closes the active dispute and, when newStatus differs from
// the current status, moves the reservation there under the capacity rule.
func (s *Service) ResolveDispute(ctx context.Context, actorID string, id int64, resolution string, newStatus *domain.Status) (*domain.Reservation, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Required("actor_id")
	}
	if strings.TrimSpace(resolution) == "" {
		return nil, domain.Required("resolution")
	}
	if newStatus != nil && !newStatus.Valid() {
		return nil, &domain.ValidationError{Field: "new_status", Message: "unknown status " + string(*newStatus)}
	}

	var delta int
	updated, err := s.mutate(ctx, id, func(current *domain.Reservation) (repository.Mutation, error) {
		if !current.Dispute.HasDispute || current.Dispute.Status == domain.DisputeResolved {
			return repository.Mutation{}, fmt.Errorf("reservation %d: %w", id, domain.ErrNoActiveDispute)
		}

		now := s.now()
		next := *current
		delta = 0
		if newStatus != nil && *newStatus != current.Status {
			if _, err := s.activeListing(ctx, current.ListingID); err != nil {
				return repository.Mutation{}, err
			}
			delta = s.moveTo(&next, *newStatus, now)
		}
		next.Dispute.Status = domain.DisputeResolved
		next.Dispute.Resolution = resolution
		next.Dispute.ResolvedBy = actorID
		next.Dispute.ResolvedAt = &now

		return repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			CapacityDelta:   delta,
			Audit: s.entry(actorID, domain.AuditDisputeResolve, id, map[string]any{
				"resolution":     resolution,
				"from":           string(current.Status),
				"to":             string(next.Status),
				"capacity_delta": delta,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if delta != 0 {
		s.invalidateListing(ctx, updated.ListingID)
	}
	s.publish(ctx, kafka.EventDisputeResolved, updated)
	return updated, nil
}

// Refund marks a paid reservation refunded. The room slot, if any, is kept.
func (s *Service) Refund(ctx context.Context, actorID string, id int64, amount int64, reason string) (*domain.Reservation, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Required("actor_id")
	}
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Message: "must be positive"}
	}

	updated, err := s.mutate(ctx, id, func(current *domain.Reservation) (repository.Mutation, error) {
		switch current.PaymentStatus {
		case domain.PaymentPending:
			return repository.Mutation{}, fmt.Errorf("reservation %d: %w", id, domain.ErrNotPaid)
		case domain.PaymentRefunded:
			return repository.Mutation{}, fmt.Errorf("reservation %d already refunded: %w", id, domain.ErrNotPaid)
		}
		if amount > current.Fees.TotalAmount {
			return repository.Mutation{}, &domain.ValidationError{
				Field:   "amount",
				Message: fmt.Sprintf("exceeds paid total %d", current.Fees.TotalAmount),
			}
		}

		now := s.now()
		next := *current
		next.PaymentStatus = domain.PaymentRefunded
		next.Refund = domain.Refund{
			Status:     domain.RefundCompleted,
			Amount:     amount,
			Reason:     reason,
			RefundedBy: actorID,
			RefundedAt: &now,
		}
		return repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			RefundedAt:      &now,
			Audit: s.entry(actorID, domain.AuditRefund, id, map[string]any{
				"amount":            amount,
				"reason":            reason,
				"payment_reference": current.PaymentReference,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventRefunded, updated)
	return updated, nil
}

// Purge physically deletes a reservation. An approved reservation gives its
// slot back on the way out.
func (s *Service) Purge(ctx context.Context, actorID string, id int64, reason string) error {
	if err := requireActor(actorID, reason); err != nil {
		return err
	}

	var delta int
	purged, err := s.mutate(ctx, id, func(current *domain.Reservation) (repository.Mutation, error) {
		delta = domain.CapacityDelta(current.Status, "")
		return repository.Mutation{
			Reservation:     current,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			CapacityDelta:   delta,
			Delete:          true,
			Audit: s.entry(actorID, domain.AuditPurge, id, map[string]any{
				"reason":         reason,
				"status":         string(current.Status),
				"payment_status": string(current.PaymentStatus),
				"capacity_delta": delta,
			}),
		}, nil
	})
	if err != nil {
		return err
	}

	if delta != 0 {
		s.invalidateListing(ctx, purged.ListingID)
	}
	s.publish(ctx, kafka.EventPurged, purged)
	return nil
}

func (s *Service) Transactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.transactions.List(ctx, limit)
}

func (s *Service) AuditLog(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	return s.audit.List(ctx, filter)
}

// mutate reads the reservation, builds a mutation and applies it, rereading
// and rebuilding when another writer got there first.
func (s *Service) mutate(ctx context.Context, id int64, build func(current *domain.Reservation) (repository.Mutation, error)) (*domain.Reservation, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		m, err := build(current)
		if err != nil {
			return nil, err
		}
		err = s.reservations.Apply(ctx, m)
		if err == nil {
			return m.Reservation, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) || attempt == maxStaleRetries {
			return nil, err
		}
	}
}

// moveTo sets the target status on next and returns the capacity delta the
// move requires. Entering approved issues an access code once.
func (s *Service) moveTo(next *domain.Reservation, target domain.Status, now time.Time) int {
	delta := domain.CapacityDelta(next.Status, target)
	if target == domain.StatusApproved && next.Status != domain.StatusApproved {
		if next.AccessCode == "" {
			next.AccessCode = s.codes.Next()
		}
		next.ApprovedAt = &now
	}
	next.Status = target
	return delta
}

func (s *Service) activeListing(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Deleted() {
		return nil, &domain.NotFoundError{Kind: "listing", ID: id}
	}
	return listing, nil
}

func (s *Service) entry(actorID string, action domain.AuditAction, id int64, details map[string]any) *domain.AuditEntry {
	return &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: domain.AuditTargetReservation,
		TargetID:   strconv.FormatInt(id, 10),
		Details:    details,
		CreatedAt:  s.now(),
	}
}

func (s *Service) invalidateListing(ctx context.Context, listingID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, listingID); err != nil {
		log.Printf("WARNING: invalidate listing %d: %v", listingID, err)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, reservation *domain.Reservation) {
	if err := reservations.Publish(ctx, s.producer, s.eventsTopic, s.notificationsTopic, eventType, reservation); err != nil {
		log.Printf("WARNING: failed to publish %s event for reservation %d: %v", eventType, reservation.ID, err)
	}
}

func requireActor(actorID, reason string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.Required("actor_id")
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Required("reason")
	}
	return nil
}

var _ AdminUseCase = (*Service)(nil)
