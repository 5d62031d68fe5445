package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/hostelmarket/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:listing:7", listingKey(7))
	assert.Equal(t, "lock:payment:PAY-1", paymentLockKey("PAY-1"))
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.listingTTL)
	assert.NoError(t, c.Close())
}

func testCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("HOSTEL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOSTEL_TEST_REDIS_ADDR is not set")
	}
	c := NewRedisCache(config.RedisConfig{Addr: addr}, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPaymentLock_ExclusiveUntilReleased(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	reference := "PAY-" + uuid.NewString()

	token, ok, err := c.AcquirePaymentLock(ctx, reference, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquirePaymentLock(ctx, reference, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleasePaymentLock(ctx, reference, token))
	_, ok, err = c.AcquirePaymentLock(ctx, reference, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPaymentLock_ExpiredHolderCannotReleaseNewLock(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	reference := "PAY-" + uuid.NewString()

	stale, ok, err := c.AcquirePaymentLock(ctx, reference, 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	time.Sleep(100 * time.Millisecond)

	current, ok, err := c.AcquirePaymentLock(ctx, reference, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.ReleasePaymentLock(ctx, reference, stale))
	_, ok, err = c.AcquirePaymentLock(ctx, reference, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleasePaymentLock(ctx, reference, current))
}
