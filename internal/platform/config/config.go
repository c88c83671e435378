package config

import (
	"os"
	"strconv"
	"time"

	platformstrings "zipstate/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	AdminToken      string
	AuthRequired    bool
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	JWT       JWT
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// JWT holds the signing material and claims policy for issued access tokens.
type JWT struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// RedisConfig controls the optional Redis connection used for rate limiting.
// An empty URL disables Redis and callers fall back to in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig controls the optional Postgres connection used for API key
// persistence and lookup miss recording. An empty DSN keeps both in memory.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig controls the optional audit event stream. No brokers means
// audit events stay on the in-process publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RateLimitConfig bounds per-client request rates on the lookup endpoints.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtTTL := envDuration("ZIPSTATE_JWT_TTL", time.Hour)

	signingKey := os.Getenv("ZIPSTATE_JWT_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            envString("ZIPSTATE_ADDR", ":8080"),
		LogLevel:        envString("ZIPSTATE_LOG_LEVEL", "info"),
		LogFormat:       envString("ZIPSTATE_LOG_FORMAT", "json"),
		AdminToken:      os.Getenv("ZIPSTATE_ADMIN_TOKEN"),
		AuthRequired:    envBool("ZIPSTATE_AUTH_REQUIRED", false),
		RequestTimeout:  envDuration("ZIPSTATE_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: envDuration("ZIPSTATE_SHUTDOWN_TIMEOUT", 10*time.Second),
		JWT: JWT{
			SigningKey: signingKey,
			Issuer:     envString("ZIPSTATE_JWT_ISSUER", "zipstate"),
			Audience:   envString("ZIPSTATE_JWT_AUDIENCE", "zipstate-api"),
			TTL:        jwtTTL,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("ZIPSTATE_REDIS_URL"),
			PoolSize:     envInt("ZIPSTATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ZIPSTATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("ZIPSTATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ZIPSTATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ZIPSTATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("ZIPSTATE_POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: envList("ZIPSTATE_KAFKA_BROKERS"),
			Topic:   envString("ZIPSTATE_KAFKA_AUDIT_TOPIC", "zipstate.audit"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  envBool("ZIPSTATE_RATE_LIMIT_ENABLED", true),
			Requests: envInt("ZIPSTATE_RATE_LIMIT_REQUESTS", 120),
			Window:   envDuration("ZIPSTATE_RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platformstrings.SplitList(v)
}
