package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected through environment
// variables so nothing is hardcoded per deployment.
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka cluster (comma separated), topic and consumer group for the
	// order-placed event pipeline.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// JWT secret for authenticated carts.
	JWTSecret string

	// Anonymous session cart lifetime in Redis.
	SessionCartTTL time.Duration

	// Rate limit applied to cart-mutating endpoints.
	CartRateLimit  int
	CartRateWindow time.Duration

	// Online payment gateway (signed redirect URL).
	PaymentBaseURL   string
	PaymentMerchant  string
	PaymentSecret    string
	PaymentReturnURL string
}

// Load reads and validates configuration, falling back to defaults when
// variables are unset.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "shopcart.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          0,
		KafkaBrokers:     splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "shopcart-orders"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "shopcart-fulfilment"),
		JWTSecret:        getEnv("JWT_SECRET", "shopcart-secret"),
		SessionCartTTL:   7 * 24 * time.Hour,
		CartRateLimit:    100,
		CartRateWindow:   time.Second,
		PaymentBaseURL:   getEnv("PAYMENT_BASE_URL", "https://sandbox.gateway.example/pay"),
		PaymentMerchant:  getEnv("PAYMENT_MERCHANT", "SHOPCART"),
		PaymentSecret:    getEnv("PAYMENT_SECRET", "dev-payment-secret"),
		PaymentReturnURL: getEnv("PAYMENT_RETURN_URL", "http://localhost:8080/api/checkout/payment/return"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	sessionTTLHour, err := getEnvInt("SESSION_CART_TTL_HOUR", int(cfg.SessionCartTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SESSION_CART_TTL_HOUR: %w", err)
	}
	if sessionTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("SESSION_CART_TTL_HOUR must be > 0")
	}
	cfg.SessionCartTTL = time.Duration(sessionTTLHour) * time.Hour

	rateLimit, err := getEnvInt("CART_RATE_LIMIT", cfg.CartRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CART_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("CART_RATE_LIMIT must be > 0")
	}
	cfg.CartRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("CART_RATE_WINDOW_SEC", int(cfg.CartRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CART_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("CART_RATE_WINDOW_SEC must be > 0")
	}
	cfg.CartRateWindow = time.Duration(rateWindowSec) * time.Second

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.JWTSecret == "" {
		return AppConfig{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.PaymentSecret == "" {
		return AppConfig{}, fmt.Errorf("PAYMENT_SECRET must not be empty")
	}

	return cfg, nil
}

// getEnv reads a string variable, returning the fallback when empty.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer variable, returning the fallback when empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV parses a comma separated string into a slice.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
