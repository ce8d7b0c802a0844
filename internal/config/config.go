package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Redis response cache, disabled when empty
	RedisURL string
	CacheTTL time.Duration

	// Kafka storefront events, disabled when empty
	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	// API Configuration
	APIPort            string
	APIHost            string
	CORSAllowedOrigins []string

	// Sessions
	SessionSecret string
	SessionMaxAge time.Duration

	// Storefront API
	StoreDomain          string
	StorefrontToken      string
	StorefrontAPIVersion string

	// Collection pages
	CollectionPageCount int

	// Homepage and navigation
	HomeGridHandle     string
	HomeShowcaseHandle string
	HomeFeaturedHandle string

	// Account action throttling, requests per second per client IP
	AuthRateLimit int
	AuthRateBurst int

	// Environment
	Env      string
	LogLevel string
}

// DevSessionSecret signs session cookies outside production when
// SESSION_SECRET is unset.
const DevSessionSecret = "change-me-session-secret"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a private value in production")

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite://stride.db"),
		RedisURL:             getEnv("REDIS_URL", ""),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", time.Minute),
		KafkaBrokers:         getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "storefront-events"),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "stride-worker"),
		APIPort:              getEnv("API_PORT", "8080"),
		APIHost:              getEnv("API_HOST", "0.0.0.0"),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SessionSecret:        getEnv("SESSION_SECRET", DevSessionSecret),
		SessionMaxAge:        getEnvAsDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		StoreDomain:          getEnv("PUBLIC_STORE_DOMAIN", ""),
		StorefrontToken:      getEnv("PUBLIC_STOREFRONT_API_TOKEN", ""),
		StorefrontAPIVersion: getEnv("STOREFRONT_API_VERSION", "2025-01"),
		CollectionPageCount:  getEnvAsInt("COLLECTION_PAGE_COUNT", 24),
		HomeGridHandle:       getEnv("HOME_GRID_HANDLE", "frontpage"),
		HomeShowcaseHandle:   getEnv("HOME_SHOWCASE_HANDLE", "showcase"),
		HomeFeaturedHandle:   getEnv("HOME_FEATURED_HANDLE", "featured"),
		AuthRateLimit:        getEnvAsInt("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:        getEnvAsInt("AUTH_RATE_BURST", 10),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Env == "production" && (strings.TrimSpace(cfg.SessionSecret) == "" || cfg.SessionSecret == DevSessionSecret) {
		return nil, ErrInsecureSessionSecret
	}
	return cfg, nil
}

// KafkaBrokerList splits KAFKA_BROKERS on commas.
func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if list := splitList(os.Getenv(key)); len(list) > 0 {
		return list
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
