// Package memory keeps every repository in process memory behind one mutex.
// It backs the memory storage driver and the service tests.
package memory

import (
	"sync"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
)

type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	seq          int64
	listings     map[int64]*domain.Listing
	roomTypes    map[int64]*domain.RoomType
	reservations map[int64]*domain.Reservation
	transactions []domain.Transaction
	audit        []domain.AuditEntry
	references   map[string]int64
}

func New() *Store {
	return &Store{
		now:          time.Now,
		listings:     make(map[int64]*domain.Listing),
		roomTypes:    make(map[int64]*domain.RoomType),
		reservations: make(map[int64]*domain.Reservation),
		references:   make(map[string]int64),
	}
}

func (s *Store) Listings() *Listings         { return &Listings{s} }
func (s *Store) Reservations() *Reservations { return &Reservations{s} }
func (s *Store) Transactions() *Transactions { return &Transactions{s} }
func (s *Store) Audit() *Audit               { return &Audit{s} }

// SetClock replaces the time source. Tests use it to freeze timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func notFound(kind string, id any) error {
	return &domain.NotFoundError{Kind: kind, ID: id}
}

func (s *Store) tryIncrementLocked(roomTypeID int64) (*domain.RoomType, error) {
	rt, ok := s.roomTypes[roomTypeID]
	if !ok {
		return nil, notFound("room type", roomTypeID)
	}
	if rt.OccupiedCapacity >= rt.TotalCapacity {
		return nil, &domain.CapacityError{RoomTypeID: roomTypeID}
	}
	rt.OccupiedCapacity++
	rt.UpdatedAt = s.now()
	c := *rt
	return &c, nil
}

func (s *Store) decrementLocked(roomTypeID int64) (*domain.RoomType, error) {
	rt, ok := s.roomTypes[roomTypeID]
	if !ok {
		return nil, notFound("room type", roomTypeID)
	}
	if rt.OccupiedCapacity > 0 {
		rt.OccupiedCapacity--
	}
	rt.UpdatedAt = s.now()
	c := *rt
	return &c, nil
}

var (
	_ repository.ListingRepository     = (*Listings)(nil)
	_ repository.ReservationRepository = (*Reservations)(nil)
	_ repository.TransactionRepository = (*Transactions)(nil)
	_ repository.AuditRepository       = (*Audit)(nil)
)
