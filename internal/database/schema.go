// internal/database/schema.go
package database

import (
	"context"
	"fmt"
)

// schemaDDL creates the service's tables when they do not exist yet. Schema
// migration tooling is out of scope; the layout is stable enough that
// CREATE TABLE IF NOT EXISTS at startup suffices.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS card_definitions (
		id       SERIAL PRIMARY KEY,
		category VARCHAR(10) NOT NULL,
		power    INTEGER NOT NULL,
		active   BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id            UUID PRIMARY KEY,
		player1_id    TEXT NOT NULL,
		player2_id    TEXT NOT NULL,
		status        VARCHAR(20) NOT NULL DEFAULT 'in_progress',
		current_round INTEGER NOT NULL DEFAULT 1,
		points_p1     INTEGER NOT NULL DEFAULT 0,
		points_p2     INTEGER NOT NULL DEFAULT 0,
		winner        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS match_cards (
		id          BIGSERIAL PRIMARY KEY,
		match_id    UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		player_id   TEXT NOT NULL,
		card_def_id INTEGER NOT NULL REFERENCES card_definitions(id),
		used        BOOLEAN NOT NULL DEFAULT FALSE,
		round_used  INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_cards_match_player
		ON match_cards (match_id, player_id)`,
	`CREATE TABLE IF NOT EXISTS match_rounds (
		id           BIGSERIAL PRIMARY KEY,
		match_id     UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		round_number INTEGER NOT NULL,
		card_p1      BIGINT NOT NULL REFERENCES match_cards(id),
		card_p2      BIGINT NOT NULL REFERENCES match_cards(id),
		winner_id    TEXT,
		reason       TEXT
	)`,
}

// EnsureSchema applies the DDL statements in order.
func EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
