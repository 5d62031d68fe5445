package listings

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/repository"
)

type ListingUseCase interface {
	Create(ctx context.Context, input CreateListingInput) (*domain.Listing, error)
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	UpdateRoomPrice(ctx context.Context, listingID int64, tag string, price int64) (*PriceChange, error)
	Delete(ctx context.Context, id int64) error
}

type ListingCache interface {
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	InvalidateListing(ctx context.Context, id int64) error
}

// Repricer propagates a room price change to unpaid reservations.
type Repricer interface {
	RepriceRoomType(ctx context.Context, roomTypeID int64) (int, error)
}

type RoomTypeInput struct {
	Tag           string `json:"tag"`
	Price         int64  `json:"price"`
	TotalCapacity int    `json:"total_capacity"`
}

type CreateListingInput struct {
	OperatorID string          `json:"operator_id"`
	Name       string          `json:"name"`
	RoomTypes  []RoomTypeInput `json:"room_types"`
}

type PriceChange struct {
	RoomType     domain.RoomType
	Repriced     int
	RepriceError error
}

type ListingService struct {
	repo     repository.ListingRepository
	cache    ListingCache
	repricer Repricer
}

func NewListingService(repo repository.ListingRepository, cache ListingCache, repricer Repricer) *ListingService {
	return &ListingService{repo: repo, cache: cache, repricer: repricer}
}

func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if strings.TrimSpace(input.OperatorID) == "" {
		return nil, domain.Required("operator_id")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.Required("name")
	}
	if len(input.RoomTypes) == 0 {
		return nil, domain.Required("room_types")
	}

	listing := &domain.Listing{OperatorID: input.OperatorID, Name: input.Name}
	seen := make(map[string]bool, len(input.RoomTypes))
	for i, rt := range input.RoomTypes {
		field := fmt.Sprintf("room_types[%d]", i)
		switch {
		case strings.TrimSpace(rt.Tag) == "":
			return nil, domain.Required(field + ".tag")
		case seen[rt.Tag]:
			return nil, &domain.ValidationError{Field: field + ".tag", Message: "duplicate tag " + rt.Tag}
		case rt.Price < 0:
			return nil, &domain.ValidationError{Field: field + ".price", Message: "must not be negative"}
		case rt.TotalCapacity < 1:
			return nil, &domain.ValidationError{Field: field + ".total_capacity", Message: "must be at least 1"}
		}
		seen[rt.Tag] = true
		listing.RoomTypes = append(listing.RoomTypes, domain.RoomType{
			Tag:           rt.Tag,
			Price:         rt.Price,
			TotalCapacity: rt.TotalCapacity,
		})
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetListing(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Deleted() {
		return nil, &domain.NotFoundError{Kind: "listing", ID: id}
	}
	if s.cache != nil {
		_ = s.cache.SetListing(ctx, listing)
	}
	return listing, nil
}

// UpdateRoomPrice changes the price and reprices open reservations. A
// repricing failure is reported on the result; the price change stands.
func (s *ListingService) UpdateRoomPrice(ctx context.Context, listingID int64, tag string, price int64) (*PriceChange, error) {
	if price < 0 {
		return nil, &domain.ValidationError{Field: "price", Message: "must not be negative"}
	}
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Deleted() {
		return nil, &domain.NotFoundError{Kind: "listing", ID: listingID}
	}
	current, ok := listing.RoomType(tag)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "room type", ID: tag}
	}

	updated, err := s.repo.UpdatePrice(ctx, current.ID, price)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, listingID)

	change := &PriceChange{RoomType: *updated}
	if s.repricer != nil {
		change.Repriced, change.RepriceError = s.repricer.RepriceRoomType(ctx, updated.ID)
		if change.RepriceError != nil {
			log.Printf("WARNING: reprice room type %d: %v", updated.ID, change.RepriceError)
		}
	}
	return change, nil
}

func (s *ListingService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ListingService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, id); err != nil {
		log.Printf("WARNING: invalidate listing %d: %v", id, err)
	}
}

var _ ListingUseCase = (*ListingService)(nil)
