package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/hostelmarket/config"
	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	listingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, listingTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		listingTTL: listingTTL,
	}
}

// GetListing returns nil, nil on a cache miss.
func (c *RedisCache) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *RedisCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(listing.ID), payload, c.listingTTL).Err()
}

func (c *RedisCache) InvalidateListing(ctx context.Context, id int64) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}

// releaseLock deletes the lock only while it still holds the caller's token,
// so an expired holder cannot free a lock taken by another delivery.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquirePaymentLock collapses duplicate deliveries of the same payment
// callback. Correctness still rests on the repository's version check. The
// returned token must be passed to ReleasePaymentLock.
func (c *RedisCache) AcquirePaymentLock(ctx context.Context, reference string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, paymentLockKey(reference), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleasePaymentLock(ctx context.Context, reference, token string) error {
	return releaseLock.Run(ctx, c.client, []string{paymentLockKey(reference)}, token).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func listingKey(id int64) string {
	return fmt.Sprintf("cache:listing:%d", id)
}

func paymentLockKey(reference string) string {
	return "lock:payment:" + reference
}
