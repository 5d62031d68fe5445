package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Domenick1991/hostelmarket/config"
	"github.com/Domenick1991/hostelmarket/internal/bootstrap"
	"github.com/Domenick1991/hostelmarket/internal/cache"
	"github.com/Domenick1991/hostelmarket/internal/email"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
	"github.com/Domenick1991/hostelmarket/internal/worker"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatalf("worker requires kafka.brokers")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache = cache.NewRedisCache(cfg.Redis, cfg.Marketplace.ListingCacheTTL())
		defer redisCache.Close()
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	services, err := bootstrap.NewServices(cfg, storage, redisCache, producer)
	if err != nil {
		log.Fatalf("build services: %v", err)
	}

	payments := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PaymentsTopic)
	defer payments.Close()
	notifications := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer notifications.Close()

	emailSender := email.NewSender(cfg.Email.From)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := payments.Consume(ctx, worker.PaymentHandler(services.Reservations, cfg.Marketplace.PaymentLockTTL())); err != nil && ctx.Err() == nil {
			log.Printf("payments consumer stopped: %v", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		if err := notifications.Consume(ctx, worker.NotificationHandler(emailSender)); err != nil && ctx.Err() == nil {
			log.Printf("notifications consumer stopped: %v", err)
			stop()
		}
	}()

	log.Printf("worker consuming %s and %s", cfg.Kafka.PaymentsTopic, cfg.Kafka.NotificationsTopic)
	<-ctx.Done()
	log.Printf("shutting down")
	wg.Wait()
}
