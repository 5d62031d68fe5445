package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. HOSTEL_DB_HOST.
const EnvPrefix = "HOSTEL_"

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http" envPrefix:"HTTP_"`
	Database    DatabaseConfig    `yaml:"database" envPrefix:"DB_"`
	Storage     StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	Redis       RedisConfig       `yaml:"redis" envPrefix:"REDIS_"`
	Kafka       KafkaConfig       `yaml:"kafka" envPrefix:"KAFKA_"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Email       EmailConfig       `yaml:"email" envPrefix:"EMAIL_"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" env:"ADDRESS"`
	SwaggerDir string `yaml:"swagger_dir" env:"SWAGGER_DIR"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
}

// RedisConfig with an empty Addr disables the cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// KafkaConfig with no brokers disables event publishing.
type KafkaConfig struct {
	Brokers                []string `yaml:"brokers" env:"BROKERS"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic" env:"RESERVATION_EVENTS_TOPIC"`
	NotificationsTopic     string   `yaml:"notifications_topic" env:"NOTIFICATIONS_TOPIC"`
	PaymentsTopic          string   `yaml:"payments_topic" env:"PAYMENTS_TOPIC"`
	GroupID                string   `yaml:"group_id" env:"GROUP_ID"`
}

type MarketplaceConfig struct {
	CommissionPercent      float64 `yaml:"commission_percent" env:"COMMISSION_PERCENT"`
	AccessCodePrefix       string  `yaml:"access_code_prefix" env:"ACCESS_CODE_PREFIX"`
	PaymentLockTTLSeconds  int     `yaml:"payment_lock_ttl_seconds" env:"PAYMENT_LOCK_TTL_SECONDS"`
	ListingCacheTTLSeconds int     `yaml:"listing_cache_ttl_seconds" env:"LISTING_CACHE_TTL_SECONDS"`
}

func (m MarketplaceConfig) PaymentLockTTL() time.Duration {
	return time.Duration(m.PaymentLockTTLSeconds) * time.Second
}

func (m MarketplaceConfig) ListingCacheTTL() time.Duration {
	return time.Duration(m.ListingCacheTTLSeconds) * time.Second
}

type EmailConfig struct {
	From string `yaml:"from" env:"FROM"`
}

// LoadConfig reads the YAML file at path and applies HOSTEL_* environment
// overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Marketplace.AccessCodePrefix == "" {
		c.Marketplace.AccessCodePrefix = "HST"
	}
	if c.Marketplace.PaymentLockTTLSeconds <= 0 {
		c.Marketplace.PaymentLockTTLSeconds = 60
	}
	if c.Marketplace.ListingCacheTTLSeconds <= 0 {
		c.Marketplace.ListingCacheTTLSeconds = 300
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "hostelmarket-worker"
	}
}

func (c *Config) Validate() error {
	if c.Marketplace.CommissionPercent < 0 {
		return fmt.Errorf("invalid config: marketplace.commission_percent must not be negative, got %v", c.Marketplace.CommissionPercent)
	}
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid config: unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
