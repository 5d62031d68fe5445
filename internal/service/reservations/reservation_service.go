package reservations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/hostelmarket/internal/accesscode"
	"github.com/Domenick1991/hostelmarket/internal/commission"
	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/repository"
)

// ErrPaymentInProgress means another delivery of the same payment callback
// holds the payment lock.
var ErrPaymentInProgress = errors.New("payment confirmation already in progress")

const maxStaleRetries = 3

type ReservationUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error)
	Transition(ctx context.Context, id int64, action domain.Action) (*domain.Reservation, error)
	ConfirmPayment(ctx context.Context, id int64, reference string) (*domain.Reservation, error)
	Recalculate(ctx context.Context, id int64) (*domain.Reservation, error)
	RepriceRoomType(ctx context.Context, roomTypeID int64) (int, error)
	Archive(ctx context.Context, id int64, archived bool) (*domain.Reservation, error)
}

type Cache interface {
	InvalidateListing(ctx context.Context, id int64) error
	AcquirePaymentLock(ctx context.Context, reference string, ttl time.Duration) (token string, ok bool, err error)
	ReleasePaymentLock(ctx context.Context, reference, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitInput struct {
	ListingID int64          `json:"listing_id"`
	RoomType  string         `json:"room_type"`
	StudentID string         `json:"student_id"`
	Semester  string         `json:"semester"`
	Contact   domain.Contact `json:"contact"`
}

func (in SubmitInput) validate() error {
	switch {
	case in.ListingID <= 0:
		return &domain.ValidationError{Field: "listing_id", Message: "must be positive"}
	case strings.TrimSpace(in.RoomType) == "":
		return domain.Required("room_type")
	case strings.TrimSpace(in.StudentID) == "":
		return domain.Required("student_id")
	case strings.TrimSpace(in.Semester) == "":
		return domain.Required("semester")
	case strings.TrimSpace(in.Contact.Email) == "":
		return domain.Required("contact.email")
	}
	return nil
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	listings           repository.ListingRepository
	calculator         *commission.Calculator
	codes              *accesscode.Generator
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	paymentLockTTL     time.Duration
	now                func() time.Time
}

type ReservationServiceOption func(*ReservationService)

func WithCache(cache Cache) ReservationServiceOption {
	return func(s *ReservationService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, eventsTopic, notificationsTopic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithPaymentLockTTL(ttl time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.paymentLockTTL = ttl
	}
}

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	listings repository.ListingRepository,
	calculator *commission.Calculator,
	codes *accesscode.Generator,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations:   reservations,
		listings:       listings,
		calculator:     calculator,
		codes:          codes,
		paymentLockTTL: time.Minute,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) Submit(ctx context.Context, input SubmitInput) (*domain.Reservation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	listing, err := s.activeListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	roomType, ok := listing.RoomType(input.RoomType)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "room type", ID: input.RoomType}
	}

	fees, err := s.calculator.Calculate(roomType.Price)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		ListingID:     listing.ID,
		RoomTypeID:    roomType.ID,
		RoomType:      roomType.Tag,
		StudentID:     input.StudentID,
		Semester:      input.Semester,
		Contact:       input.Contact,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		Fees:          fees,
		Refund:        domain.Refund{Status: domain.RefundNotApplicable},
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventReservationSubmitted, reservation)
	return reservation, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, filter)
}

// Transition applies an operator action through the transition table. A
// concurrent change rereads the reservation and replays the action against
// the stored status.
func (s *ReservationService) Transition(ctx context.Context, id int64, action domain.Action) (*domain.Reservation, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := s.activeListing(ctx, current.ListingID); err != nil {
			return nil, err
		}

		rule, err := domain.NextStatus(current.Status, action)
		if err != nil {
			return nil, err
		}

		next := *current
		next.Status = rule.Next
		if rule.Next == domain.StatusApproved {
			now := s.now()
			next.AccessCode = s.codes.Next()
			next.ApprovedAt = &now
		}

		err = s.reservations.Apply(ctx, repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			CapacityDelta:   rule.CapacityDelta,
		})
		if errors.Is(err, domain.ErrStaleWrite) {
			if attempt == maxStaleRetries {
				return nil, s.staleTransition(ctx, id, string(action))
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if rule.CapacityDelta != 0 {
			s.invalidateListing(ctx, next.ListingID)
		}
		s.publish(ctx, eventForStatus(next.Status), &next)
		return &next, nil
	}
}

// ConfirmPayment records a settled payment. Confirming an already paid
// reservation again with the same reference is a no-op.
func (s *ReservationService) ConfirmPayment(ctx context.Context, id int64, reference string) (*domain.Reservation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.Required("payment_reference")
	}

	if s.cache != nil {
		token, ok, err := s.cache.AcquirePaymentLock(ctx, reference, s.paymentLockTTL)
		if err != nil {
			log.Printf("WARNING: payment lock for %s unavailable: %v", reference, err)
		} else if !ok {
			return nil, ErrPaymentInProgress
		} else {
			defer func() {
				if err := s.cache.ReleasePaymentLock(ctx, reference, token); err != nil {
					log.Printf("WARNING: release payment lock %s: %v", reference, err)
				}
			}()
		}
	}

	for attempt := 0; ; attempt++ {
		current, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus != domain.PaymentPending {
			return alreadyConfirmed(current, reference)
		}
		if current.Status != domain.StatusApprovedForPayment {
			return nil, &domain.TransitionError{From: current.Status, Action: "confirm_payment"}
		}

		now := s.now()
		next := *current
		next.Status = domain.StatusPaidAwaitingFinal
		next.PaymentStatus = domain.PaymentPaid
		next.PaymentReference = reference
		next.PaidAt = &now

		err = s.reservations.Apply(ctx, repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
			Payment: &domain.Transaction{
				ReservationID:    next.ID,
				HostelFee:        next.Fees.HostelFee,
				AdminCommission:  next.Fees.AdminCommission,
				TotalAmount:      next.Fees.TotalAmount,
				PaymentReference: reference,
				PaidAt:           now,
			},
		})
		if errors.Is(err, domain.ErrStaleWrite) && attempt < maxStaleRetries {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, kafka.EventPaymentConfirmed, &next)
		return &next, nil
	}
}

func alreadyConfirmed(current *domain.Reservation, reference string) (*domain.Reservation, error) {
	if current.PaymentReference != reference {
		return nil, fmt.Errorf("reservation %d settled with another reference: %w", current.ID, domain.ErrAlreadyPaid)
	}
	return current, nil
}

// Recalculate refreshes the financial snapshot from the current room price
// while the reservation is unpaid and non-terminal. Otherwise it is a no-op.
func (s *ReservationService) Recalculate(ctx context.Context, id int64) (*domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roomType, err := s.listings.GetRoomType(ctx, current.RoomTypeID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.reprice(ctx, current, roomType.Price)
	return updated, err
}

// RepriceRoomType recomputes every repriceable reservation of a room type
// after a price change and reports how many snapshots changed.
func (s *ReservationService) RepriceRoomType(ctx context.Context, roomTypeID int64) (int, error) {
	roomType, err := s.listings.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return 0, err
	}
	candidates, err := s.reservations.ListRepriceable(ctx, roomTypeID)
	if err != nil {
		return 0, err
	}

	var (
		changed int
		errs    []error
	)
	for i := range candidates {
		_, ok, err := s.reprice(ctx, &candidates[i], roomType.Price)
		if err != nil {
			errs = append(errs, fmt.Errorf("reservation %d: %w", candidates[i].ID, err))
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, errors.Join(errs...)
}

func (s *ReservationService) reprice(ctx context.Context, current *domain.Reservation, price int64) (*domain.Reservation, bool, error) {
	for attempt := 0; ; attempt++ {
		if !current.Repriceable() {
			return current, false, nil
		}
		fees, err := s.calculator.Calculate(price)
		if err != nil {
			return nil, false, err
		}
		if fees == current.Fees {
			return current, false, nil
		}

		next := *current
		next.Fees = fees
		err = s.reservations.Apply(ctx, repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
		})
		if err == nil {
			s.publish(ctx, kafka.EventRepriced, &next)
			return &next, true, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) || attempt == maxStaleRetries {
			return nil, false, err
		}
		if current, err = s.reservations.GetByID(ctx, current.ID); err != nil {
			return nil, false, err
		}
	}
}

// Archive toggles visibility only; the lifecycle is untouched.
func (s *ReservationService) Archive(ctx context.Context, id int64, archived bool) (*domain.Reservation, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.IsArchived == archived {
			return current, nil
		}

		next := *current
		next.IsArchived = archived
		err = s.reservations.Apply(ctx, repository.Mutation{
			Reservation:     &next,
			Expected:        current.Status,
			ExpectedPayment: current.PaymentStatus,
			ExpectedVersion: current.Version,
		})
		if err == nil {
			return &next, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) || attempt == maxStaleRetries {
			return nil, err
		}
	}
}

func (s *ReservationService) activeListing(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Deleted() {
		return nil, &domain.NotFoundError{Kind: "listing", ID: id}
	}
	return listing, nil
}

func (s *ReservationService) staleTransition(ctx context.Context, id int64, action string) error {
	latest, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.TransitionError{From: latest.Status, Action: action}
}

func (s *ReservationService) invalidateListing(ctx context.Context, listingID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, listingID); err != nil {
		log.Printf("WARNING: invalidate listing %d: %v", listingID, err)
	}
}

func (s *ReservationService) publish(ctx context.Context, eventType string, reservation *domain.Reservation) {
	if err := Publish(ctx, s.producer, s.eventsTopic, s.notificationsTopic, eventType, reservation); err != nil {
		log.Printf("WARNING: failed to publish %s event for reservation %d: %v", eventType, reservation.ID, err)
	}
}

// Publish sends a lifecycle event to the events topic and, when configured,
// to the notifications topic.
func Publish(ctx context.Context, producer Producer, eventsTopic, notificationsTopic, eventType string, reservation *domain.Reservation) error {
	if producer == nil || eventsTopic == "" {
		return nil
	}
	event := kafka.NewReservationEvent(eventType, reservation)
	key := fmt.Sprintf("%d", reservation.ID)
	if err := producer.Publish(ctx, eventsTopic, key, event); err != nil {
		return err
	}
	if notificationsTopic != "" {
		return producer.Publish(ctx, notificationsTopic, key, event)
	}
	return nil
}

func eventForStatus(status domain.Status) string {
	switch status {
	case domain.StatusApprovedForPayment:
		return kafka.EventApprovedForPayment
	case domain.StatusRejected:
		return kafka.EventRejected
	case domain.StatusPaidAwaitingFinal:
		return kafka.EventPaymentConfirmed
	case domain.StatusApproved:
		return kafka.EventApproved
	default:
		return kafka.EventReservationSubmitted
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
