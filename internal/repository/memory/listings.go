package memory

import (
	"context"

	"github.com/Domenick1991/hostelmarket/internal/domain"
)

type Listings struct {
	s *Store
}

func (r *Listings) Create(_ context.Context, listing *domain.Listing) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	listing.ID = s.nextID()
	listing.CreatedAt, listing.UpdatedAt = now, now
	for i := range listing.RoomTypes {
		rt := &listing.RoomTypes[i]
		rt.ID = s.nextID()
		rt.ListingID = listing.ID
		rt.UpdatedAt = now
		stored := *rt
		s.roomTypes[rt.ID] = &stored
	}
	stored := *listing
	stored.RoomTypes = append([]domain.RoomType(nil), listing.RoomTypes...)
	s.listings[listing.ID] = &stored
	return nil
}

func (r *Listings) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, notFound("listing", id)
	}
	c := *l
	c.RoomTypes = make([]domain.RoomType, 0, len(l.RoomTypes))
	for _, rt := range l.RoomTypes {
		c.RoomTypes = append(c.RoomTypes, *s.roomTypes[rt.ID])
	}
	return &c, nil
}

func (r *Listings) GetRoomType(_ context.Context, id int64) (*domain.RoomType, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.roomTypes[id]
	if !ok {
		return nil, notFound("room type", id)
	}
	c := *rt
	return &c, nil
}

func (r *Listings) UpdatePrice(_ context.Context, roomTypeID int64, price int64) (*domain.RoomType, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.roomTypes[roomTypeID]
	if !ok {
		return nil, notFound("room type", roomTypeID)
	}
	rt.Price = price
	rt.UpdatedAt = s.now()
	c := *rt
	return &c, nil
}

func (r *Listings) SoftDelete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.Deleted() {
		return notFound("listing", id)
	}
	now := s.now()
	l.DeletedAt = &now
	l.UpdatedAt = now
	return nil
}

func (r *Listings) TryIncrement(_ context.Context, roomTypeID int64) (*domain.RoomType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tryIncrementLocked(roomTypeID)
}

func (r *Listings) Decrement(_ context.Context, roomTypeID int64) (*domain.RoomType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.decrementLocked(roomTypeID)
}
