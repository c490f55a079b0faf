package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	// Commerce backend. A missing or placeholder token means mock mode.
	CommerceDomain     string
	CommerceToken      string
	CommerceAPIVersion string
	CommerceTimeout    time.Duration

	RedisAddr       string
	RedisPassword   string
	VisitorStateTTL time.Duration

	MongoURI      string
	MongoDatabase string

	KafkaBrokers  []string
	TrackingTopic string

	VisitorCookie         string
	FreeShippingThreshold decimal.Decimal
	CountdownVersion      int
	CountdownDuration     time.Duration

	ContactRateLimit  int
	ContactRateWindow time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB

		CommerceDomain:     getEnv("SHOPIFY_STORE_DOMAIN", ""),
		CommerceToken:      getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
		CommerceAPIVersion: getEnv("SHOPIFY_API_VERSION", "2024-01"),
		CommerceTimeout:    getDuration("SHOPIFY_TIMEOUT", 10*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		VisitorStateTTL: getDuration("VISITOR_STATE_TTL", 90*24*time.Hour),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),

		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		TrackingTopic: getEnv("TRACKING_TOPIC", "tracking-events"),

		VisitorCookie:         getEnv("VISITOR_COOKIE", "sd_visitor"),
		FreeShippingThreshold: getDecimal("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(99)),
		CountdownVersion:      getInt("COUNTDOWN_VERSION", 1),
		CountdownDuration:     getDuration("COUNTDOWN_DURATION", 24*time.Hour),

		ContactRateLimit:  getInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getDuration("CONTACT_RATE_WINDOW", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s: invalid int %q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s: invalid duration %q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("config %s: invalid decimal %q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
