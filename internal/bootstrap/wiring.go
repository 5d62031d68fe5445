package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/hostelmarket/config"
	"github.com/Domenick1991/hostelmarket/internal/accesscode"
	"github.com/Domenick1991/hostelmarket/internal/cache"
	"github.com/Domenick1991/hostelmarket/internal/commission"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/repository"
	"github.com/Domenick1991/hostelmarket/internal/repository/memory"
	"github.com/Domenick1991/hostelmarket/internal/service/admin"
	"github.com/Domenick1991/hostelmarket/internal/service/listings"
	"github.com/Domenick1991/hostelmarket/internal/service/reservations"
	"github.com/jackc/pgx/v5/pgxpool"
)

const publishRetries = 3

type Storage struct {
	Listings     repository.ListingRepository
	Reservations repository.ReservationRepository
	Transactions repository.TransactionRepository
	Audit        repository.AuditRepository
	close        func()
}

// OpenStorage connects the backend selected by storage.driver.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Printf("WARNING: using in-memory storage, data is lost on restart")
		store := memory.New()
		return &Storage{
			Listings:     store.Listings(),
			Reservations: store.Reservations(),
			Transactions: store.Transactions(),
			Audit:        store.Audit(),
			close:        func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Storage{
		Listings:     repository.NewListingRepository(pool),
		Reservations: repository.NewReservationRepository(pool),
		Transactions: repository.NewTransactionRepository(pool),
		Audit:        repository.NewAuditRepository(pool),
		close:        pool.Close,
	}, nil
}

func (s *Storage) Close() {
	s.close()
}

type Services struct {
	Reservations *reservations.ReservationService
	Admin        *admin.Service
	Listings     *listings.ListingService
}

// NewServices builds the use cases. redisCache and producer may be nil, which
// disables caching and event publishing respectively.
func NewServices(cfg *config.Config, storage *Storage, redisCache *cache.RedisCache, producer *kafka.Producer) (*Services, error) {
	calculator, err := commission.NewCalculator(cfg.Marketplace.CommissionPercent)
	if err != nil {
		return nil, err
	}
	codes := accesscode.NewGenerator(cfg.Marketplace.AccessCodePrefix)

	reservationOpts := []reservations.ReservationServiceOption{
		reservations.WithPaymentLockTTL(cfg.Marketplace.PaymentLockTTL()),
	}
	var adminOpts []admin.Option
	var listingCache listings.ListingCache
	if redisCache != nil {
		reservationOpts = append(reservationOpts, reservations.WithCache(redisCache))
		adminOpts = append(adminOpts, admin.WithCache(redisCache))
		listingCache = redisCache
	}
	if producer != nil {
		retrying := retryingProducer{producer: producer}
		reservationOpts = append(reservationOpts,
			reservations.WithProducer(retrying, cfg.Kafka.ReservationEventsTopic, cfg.Kafka.NotificationsTopic))
		adminOpts = append(adminOpts,
			admin.WithProducer(retrying, cfg.Kafka.ReservationEventsTopic, cfg.Kafka.NotificationsTopic))
	}

	reservationService := reservations.NewReservationService(
		storage.Reservations,
		storage.Listings,
		calculator,
		codes,
		reservationOpts...,
	)
	return &Services{
		Reservations: reservationService,
		Admin: admin.NewService(
			storage.Reservations,
			storage.Listings,
			storage.Transactions,
			storage.Audit,
			codes,
			adminOpts...,
		),
		Listings: listings.NewListingService(storage.Listings, listingCache, reservationService),
	}, nil
}

type retryingProducer struct {
	producer *kafka.Producer
}

func (p retryingProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	return p.producer.PublishWithRetry(ctx, topic, key, value, publishRetries)
}
