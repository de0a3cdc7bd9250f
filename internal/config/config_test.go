package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "tuiter", cfg.MongoDatabase)
	assert.Equal(t, "tuiter.reactions", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Second, cfg.ToggleTimeout)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TUITER_PORT", "9000")
	t.Setenv("TUITER_STORE_BACKEND", "Mongo")
	t.Setenv("TUITER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TUITER_RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TUITER_TOGGLE_TIMEOUT", "250ms")
	t.Setenv("TUITER_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "k1:9092,k2:9092", cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.ToggleTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "TUITER_STORE_BACKEND", "redis"},
		{"zero rate limit", "TUITER_RATE_LIMIT_REQUESTS", "0"},
		{"unparseable duration", "TUITER_TOGGLE_TIMEOUT", "soon"},
		{"negative timeout", "TUITER_TOGGLE_TIMEOUT", "-1s"},
		{"zero publish timeout", "TUITER_PUBLISH_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel_Unknown(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
