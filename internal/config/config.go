// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every environment-tunable knob the service recognizes.
// Values are read once at startup; a missing variable falls back to its
// documented default.
type Config struct {
	Port        string
	MetricsAddr string

	Game   Game
	Ledger Ledger
	Redis  Redis
}

// Game holds the match rules.
type Game struct {
	HandSize  int
	MaxRounds int
}

// Ledger configures the Result Notifier's connection to the external
// statistics ledger.
type Ledger struct {
	URL              string
	APIKey           string
	Timeout          time.Duration
	MaxRetryAttempts int
	BackoffBase      int
	MaxRetryWait     time.Duration
}

// Redis configures the optional move-record queue. An empty Addr disables it.
type Redis struct {
	Addr  string
	DB    int
	Queue string
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8003"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		Game: Game{
			HandSize:  getEnvInt("HAND_SIZE", 5),
			MaxRounds: getEnvInt("MAX_ROUNDS", 5),
		},
		Ledger: Ledger{
			URL:              getEnv("LEDGER_URL", "http://player_service:8002"),
			APIKey:           getEnv("SERVICE_API_KEY", "default_key"),
			Timeout:          getEnvDuration("LEDGER_TIMEOUT", 5*time.Second),
			MaxRetryAttempts: getEnvInt("MAX_RETRY_ATTEMPTS", 3),
			BackoffBase:      getEnvInt("RETRY_BACKOFF_BASE", 2),
			MaxRetryWait:     getEnvDuration("MAX_RETRY_WAIT", 10*time.Second),
		},
		Redis: Redis{
			Addr:  os.Getenv("REDIS_ADDR"),
			DB:    getEnvInt("REDIS_DB", 0),
			Queue: getEnv("TURNLOG_QUEUE_NAME", "cardclash_moves"),
		},
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration parses an environment variable as a time.Duration. A plain
// integer is treated as seconds, so MAX_RETRY_WAIT=10 and MAX_RETRY_WAIT=10s
// are equivalent.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
