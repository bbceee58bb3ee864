// Package config builds the service configuration from environment variables
// so main stays lean. Everything has a development-friendly default except
// the search-service coordinates and the JWT secret, which fail fast.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for the screening service.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Gateway   GatewayConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Session   SessionConfig
	Reconcile ReconcileConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig controls the root slog logger.
type LogConfig struct {
	Level  string
	Format string
}

// GatewayConfig locates the external sanctions search service.
type GatewayConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// AuthConfig holds token validation inputs. Token issuing happens elsewhere;
// this service only verifies.
type AuthConfig struct {
	JWTSecret    string
	AdminKeyHash string // bcrypt hash of the admin key; empty disables admin routes
}

// RedisConfig configures the revocation-list connection.
// An empty URL disables revocation checking (dev mode).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig controls screening-session lifetime.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// ReconcileConfig tunes the search-history reconciliation loop.
type ReconcileConfig struct {
	Attempts int
	Interval time.Duration
}

// RateLimitConfig tunes the per-user search limit.
type RateLimitConfig struct {
	Disabled        bool
	SearchPerMinute int
}

// AuditConfig selects the audit store and optional Kafka sink.
type AuditConfig struct {
	Store        string // "memory" or "postgres"
	DatabaseURL  string
	BufferSize   int
	KafkaBrokers []string // empty disables the sink
	KafkaTopic   string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            envStr("WATCHGATE_ADDR", ":8080"),
			ReadTimeout:     envDuration("WATCHGATE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    envDuration("WATCHGATE_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     envDuration("WATCHGATE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("WATCHGATE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "text"),
		},
		Gateway: GatewayConfig{
			BaseURL:  os.Getenv("GATEWAY_BASE_URL"),
			APIToken: os.Getenv("GATEWAY_API_TOKEN"),
			Timeout:  envDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			TTL:           envDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval: envDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Reconcile: ReconcileConfig{
			Attempts: envInt("RECONCILE_ATTEMPTS", 3),
			Interval: envDuration("RECONCILE_INTERVAL", 200*time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			Disabled:        envBool("RATE_LIMIT_DISABLED", false),
			SearchPerMinute: envInt("RATE_LIMIT_SEARCH_PER_MINUTE", 30),
		},
		Audit: AuditConfig{
			Store:        envStr("AUDIT_STORE", "memory"),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			BufferSize:   envInt("AUDIT_BUFFER_SIZE", 1024),
			KafkaBrokers: envList("AUDIT_KAFKA_BROKERS"),
			KafkaTopic:   envStr("AUDIT_KAFKA_TOPIC", "watchgate.audit.events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if c.Gateway.APIToken == "" {
		return fmt.Errorf("GATEWAY_API_TOKEN is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Audit.Store {
	case "memory":
	case "postgres":
		if c.Audit.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when AUDIT_STORE=postgres")
		}
	default:
		return fmt.Errorf("AUDIT_STORE must be memory or postgres, got %q", c.Audit.Store)
	}
	if c.Reconcile.Attempts < 1 {
		return fmt.Errorf("RECONCILE_ATTEMPTS must be at least 1")
	}
	if c.RateLimit.SearchPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_SEARCH_PER_MINUTE must be at least 1")
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
