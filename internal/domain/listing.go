package domain

import "time"

type Listing struct {
	ID         int64
	OperatorID string
	Name       string
	RoomTypes  []RoomType
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (l *Listing) Deleted() bool {
	return l.DeletedAt != nil
}

// RoomType returns the room type carrying the given tag.
func (l *Listing) RoomType(tag string) (*RoomType, bool) {
	for i := range l.RoomTypes {
		if l.RoomTypes[i].Tag == tag {
			return &l.RoomTypes[i], true
		}
	}
	return nil, false
}

// RoomType holds the capacity counters of one kind of room in a listing.
// OccupiedCapacity is only changed through the capacity ledger primitives.
type RoomType struct {
	ID               int64
	ListingID        int64
	Tag              string
	Price            int64
	TotalCapacity    int
	OccupiedCapacity int
	UpdatedAt        time.Time
}

func (r RoomType) Available() bool {
	return r.OccupiedCapacity < r.TotalCapacity
}

func (r RoomType) Free() int {
	if r.OccupiedCapacity >= r.TotalCapacity {
		return 0
	}
	return r.TotalCapacity - r.OccupiedCapacity
}
