// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "METRICS_ADDR", "HAND_SIZE", "MAX_ROUNDS",
		"LEDGER_URL", "SERVICE_API_KEY", "LEDGER_TIMEOUT",
		"MAX_RETRY_ATTEMPTS", "RETRY_BACKOFF_BASE", "MAX_RETRY_WAIT",
		"REDIS_ADDR", "REDIS_DB", "TURNLOG_QUEUE_NAME",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8003", cfg.Port)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, 5, cfg.Game.HandSize)
	assert.Equal(t, 5, cfg.Game.MaxRounds)
	assert.Equal(t, "http://player_service:8002", cfg.Ledger.URL)
	assert.Equal(t, "default_key", cfg.Ledger.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 3, cfg.Ledger.MaxRetryAttempts)
	assert.Equal(t, 2, cfg.Ledger.BackoffBase)
	assert.Equal(t, 10*time.Second, cfg.Ledger.MaxRetryWait)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "cardclash_moves", cfg.Redis.Queue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("HAND_SIZE", "7")
	t.Setenv("MAX_ROUNDS", "9")
	t.Setenv("LEDGER_URL", "http://ledger.internal:8002")
	t.Setenv("SERVICE_API_KEY", "prod_key")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 7, cfg.Game.HandSize)
	assert.Equal(t, 9, cfg.Game.MaxRounds)
	assert.Equal(t, "http://ledger.internal:8002", cfg.Ledger.URL)
	assert.Equal(t, "prod_key", cfg.Ledger.APIKey)
	assert.Equal(t, 5, cfg.Ledger.MaxRetryAttempts)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("MAX_RETRY_WAIT", "15")
	assert.Equal(t, 15*time.Second, Load().Ledger.MaxRetryWait)

	t.Setenv("MAX_RETRY_WAIT", "1m30s")
	assert.Equal(t, 90*time.Second, Load().Ledger.MaxRetryWait)

	t.Setenv("MAX_RETRY_WAIT", "nonsense")
	assert.Equal(t, 10*time.Second, Load().Ledger.MaxRetryWait)
}

func TestBadIntFallsBack(t *testing.T) {
	t.Setenv("HAND_SIZE", "five")
	assert.Equal(t, 5, Load().Game.HandSize)
}
