package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
http:
  address: ":9090"
  swagger_dir: "./docs"
database:
  host: localhost
  port: 5432
  user: hostel
  password: secret
  name: hostelmarket
  ssl_mode: disable
storage:
  driver: postgres
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
  reservation_events_topic: reservation-events
  notifications_topic: notifications
  payments_topic: payments
marketplace:
  commission_percent: 3
  access_code_prefix: RIV
  payment_lock_ttl_seconds: 30
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "payments", cfg.Kafka.PaymentsTopic)
	assert.Equal(t, "hostelmarket-worker", cfg.Kafka.GroupID)
	assert.Equal(t, 3.0, cfg.Marketplace.CommissionPercent)
	assert.Equal(t, "RIV", cfg.Marketplace.AccessCodePrefix)
	assert.Equal(t, 30*time.Second, cfg.Marketplace.PaymentLockTTL())
	assert.Equal(t, 300*time.Second, cfg.Marketplace.ListingCacheTTL())
	assert.Equal(t, "host=localhost port=5432 user=hostel password=secret dbname=hostelmarket sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HOSTEL_COMMISSION_PERCENT", "7.5")
	t.Setenv("HOSTEL_DB_HOST", "db.internal")
	t.Setenv("HOSTEL_STORAGE_DRIVER", "memory")
	t.Setenv("HOSTEL_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 7.5, cfg.Marketplace.CommissionPercent)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "marketplace:\n  commission_percent: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "HST", cfg.Marketplace.AccessCodePrefix)
	assert.Equal(t, time.Minute, cfg.Marketplace.PaymentLockTTL())
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"negative commission", "marketplace:\n  commission_percent: -1\n"},
		{"unknown driver", "storage:\n  driver: sqlite\n"},
		{"malformed yaml", "http: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
