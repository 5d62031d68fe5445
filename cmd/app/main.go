package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/hostelmarket/config"
	"github.com/Domenick1991/hostelmarket/internal/bootstrap"
	"github.com/Domenick1991/hostelmarket/internal/cache"
	"github.com/Domenick1991/hostelmarket/internal/kafka"
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

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Printf("WARNING: kafka unavailable, events will be retried per publish: %v", err)
		}
	}

	services, err := bootstrap.NewServices(cfg, storage, redisCache, producer)
	if err != nil {
		log.Fatalf("build services: %v", err)
	}

	log.Printf("hostelmarket listening on %s (storage=%s)", cfg.HTTP.Address, cfg.Storage.Driver)
	if err := bootstrap.Run(ctx, cfg, bootstrap.NewHandlers(services)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
