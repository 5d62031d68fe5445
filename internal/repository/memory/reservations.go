package memory

import (
	"context"
	"sort"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
)

type Reservations struct {
	s *Store
}

func (r *Reservations) Create(_ context.Context, res *domain.Reservation) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res.ID = s.nextID()
	res.Version = 1
	res.CreatedAt, res.UpdatedAt = now, now
	stored := *res
	s.reservations[res.ID] = &stored
	return nil
}

func (r *Reservations) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	c := *res
	return &c, nil
}

func (r *Reservations) List(_ context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	return r.collect(func(res *domain.Reservation) bool {
		if filter.StudentID != "" && res.StudentID != filter.StudentID {
			return false
		}
		if filter.ListingID != 0 && res.ListingID != filter.ListingID {
			return false
		}
		return filter.IncludeArchived || !res.IsArchived
	}, true), nil
}

func (r *Reservations) ListRepriceable(_ context.Context, roomTypeID int64) ([]domain.Reservation, error) {
	return r.collect(func(res *domain.Reservation) bool {
		return res.RoomTypeID == roomTypeID && res.Repriceable()
	}, false), nil
}

func (r *Reservations) collect(match func(*domain.Reservation) bool, newestFirst bool) []domain.Reservation {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, res := range s.reservations {
		if match(res) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Apply checks every precondition before touching anything, so a failed
// mutation leaves the store unchanged.
func (r *Reservations) Apply(_ context.Context, m repository.Mutation) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	res := m.Reservation
	current, ok := s.reservations[res.ID]
	if !ok {
		return notFound("reservation", res.ID)
	}
	if current.Version != m.ExpectedVersion || current.Status != m.Expected || current.PaymentStatus != m.ExpectedPayment {
		return domain.ErrStaleWrite
	}
	if m.Payment != nil {
		if owner, used := s.references[m.Payment.PaymentReference]; used && owner != res.ID {
			return &domain.ValidationError{Field: "payment_reference", Message: "already used by another reservation"}
		}
	}

	switch {
	case m.CapacityDelta > 0:
		if _, err := s.tryIncrementLocked(res.RoomTypeID); err != nil {
			return err
		}
	case m.CapacityDelta < 0:
		if _, err := s.decrementLocked(res.RoomTypeID); err != nil {
			return err
		}
	}

	now := s.now()
	if m.Delete {
		delete(s.reservations, res.ID)
	} else {
		res.Version = current.Version + 1
		res.UpdatedAt = now
		stored := *res
		s.reservations[res.ID] = &stored
	}

	if m.Payment != nil {
		m.Payment.ID = int64(len(s.transactions) + 1)
		s.transactions = append(s.transactions, *m.Payment)
		s.references[m.Payment.PaymentReference] = res.ID
	}
	if m.RefundedAt != nil {
		for i := range s.transactions {
			if s.transactions[i].ReservationID == res.ID && s.transactions[i].RefundedAt == nil {
				at := *m.RefundedAt
				s.transactions[i].RefundedAt = &at
			}
		}
	}
	if m.Audit != nil {
		s.appendAuditLocked(m.Audit)
	}
	return nil
}
