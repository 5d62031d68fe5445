package memory

import (
	"context"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
)

type Transactions struct {
	s *Store
}

func (r *Transactions) GetByReservation(_ context.Context, reservationID int64) (*domain.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.ReservationID == reservationID {
			c := t
			return &c, nil
		}
	}
	return nil, notFound("transaction for reservation", reservationID)
}

func (r *Transactions) List(_ context.Context, limit int) ([]domain.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.transactions) {
		limit = len(s.transactions)
	}
	return append([]domain.Transaction{}, s.transactions[:limit]...), nil
}

type Audit struct {
	s *Store
}

func (r *Audit) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendAuditLocked(entry)
	return nil
}

func (r *Audit) List(_ context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AuditEntry, 0)
	for _, e := range s.audit {
		if filter.TargetType != "" && e.TargetType != filter.TargetType {
			continue
		}
		if filter.TargetID != "" && e.TargetID != filter.TargetID {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) appendAuditLocked(entry *domain.AuditEntry) {
	entry.ID = int64(len(s.audit) + 1)
	entry.CreatedAt = s.now()
	s.audit = append(s.audit, *entry)
}
