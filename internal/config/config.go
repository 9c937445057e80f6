package config

import (
	"fmt"
	"net"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/africa-markett/storefront/pkg/config"
)

// Backing stores selectable through REVIEW_SOURCE, ORDER_STORE and
// SESSION_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Backing stores
	ReviewSource string `env:"REVIEW_SOURCE" envDefault:"memory"`
	OrderStore   string `env:"ORDER_STORE" envDefault:"memory"`
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`

	// Configurator sessions expire after this many idle minutes.
	SessionTTLMinutes int `env:"SESSION_TTL_MINUTES" envDefault:"120"`

	// Pricing
	ShippingFee decimal.Decimal `env:"SHIPPING_FEE" envDefault:"7499.99"`
	Currency    string          `env:"CURRENCY" envDefault:"NGN"`

	// Review pagination
	ReviewsDefaultLimit int `env:"REVIEWS_DEFAULT_LIMIT" envDefault:"5"`
	ReviewsMaxLimit     int `env:"REVIEWS_MAX_LIMIT" envDefault:"50"`

	// PostgreSQL (REVIEW_SOURCE=postgres or ORDER_STORE=postgres)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"STOREFRONT_DB_NAME" envDefault:"storefront_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Redis (SESSION_STORE=redis)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Per-IP rate limit on configurator endpoints; 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Cache-Control max-age for catalog and review reads.
	CacheMaxAgeSeconds int `env:"CACHE_MAX_AGE_SECONDS" envDefault:"60"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Back-office catalog and order endpoints (IP allowlist in CIDR notation)
	AdminAllowedCIDRs []string `env:"ADMIN_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from a local .env file, if present, and the
// environment.
func Load() (*Config, error) {
	return LoadWithEnvFiles(".env")
}

// LoadWithEnvFiles is Load with explicit dotenv files.
func LoadWithEnvFiles(files ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithEnvFiles(cfg, files...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.ReviewSource {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when REVIEW_SOURCE=postgres")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when REVIEW_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("REVIEW_SOURCE must be %q or %q, got %q", StoreMemory, StorePostgres, c.ReviewSource)
	}
	switch c.OrderStore {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when ORDER_STORE=postgres")
		}
	default:
		return fmt.Errorf("ORDER_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.OrderStore)
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore)
	}
	if c.SessionTTLMinutes < 1 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	if c.ShippingFee.IsNegative() {
		return fmt.Errorf("SHIPPING_FEE must not be negative, got %s", c.ShippingFee)
	}
	if c.Currency == "" {
		return fmt.Errorf("CURRENCY is required")
	}
	if c.ReviewsMaxLimit < 1 {
		return fmt.Errorf("REVIEWS_MAX_LIMIT must be positive, got %d", c.ReviewsMaxLimit)
	}
	if c.ReviewsDefaultLimit < 1 || c.ReviewsDefaultLimit > c.ReviewsMaxLimit {
		return fmt.Errorf("REVIEWS_DEFAULT_LIMIT must be between 1 and %d, got %d", c.ReviewsMaxLimit, c.ReviewsDefaultLimit)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS > 0, got %d", c.RateLimitBurst)
	}
	for _, cidr := range c.PprofAllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid PPROF_ALLOWED_CIDRS entry %q: %w", cidr, err)
		}
	}
	for _, cidr := range c.AdminAllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid ADMIN_ALLOWED_CIDRS entry %q: %w", cidr, err)
		}
	}
	return nil
}
