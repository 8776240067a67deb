// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lucasbarros/cardclash/internal/config"
)

// Rdb is the global Redis client. Connect it once at application startup;
// a nil client disables move-record publishing entirely.
var Rdb *redis.Client

var queueName string

// MoveRecord holds the minimal info an out-of-band analytics consumer needs
// to replay a match move by move.
type MoveRecord struct {
	MatchID     uuid.UUID `json:"match_id"`
	PlayerID    string    `json:"player_id"`
	MatchCardID int64     `json:"match_card_id"`
	Round       int       `json:"round"`
	Timestamp   int64     `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client from config. Callers skip
// it when cfg.Addr is empty.
func ConnectRedis(cfg config.Redis) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	queueName = cfg.Queue

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return nil
}

// Enabled reports whether a Redis connection is configured.
func Enabled() bool {
	return Rdb != nil
}

// PublishMoveRecord serializes the record to JSON and pushes it onto the move
// queue. Best effort: failures are for the caller to log, never to surface to
// the player.
func PublishMoveRecord(ctx context.Context, record MoveRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal MoveRecord: %w", err)
	}
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", queueName, err)
	}
	return nil
}
