package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 7*24*time.Hour, cfg.SessionCartTTL)
	require.Equal(t, 100, cfg.CartRateLimit)
	require.Equal(t, time.Second, cfg.CartRateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SESSION_CART_TTL_HOUR", "48")
	t.Setenv("CART_RATE_LIMIT", "5")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 48*time.Hour, cfg.SessionCartTTL)
	require.Equal(t, 5, cfg.CartRateLimit)
	require.Equal(t, 3, cfg.RedisDB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("SESSION_CART_TTL_HOUR", "0")
	_, err := Load()
	require.Error(t, err)
}
