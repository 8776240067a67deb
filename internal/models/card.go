package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Card categories. Every card definition belongs to exactly one.
const (
	CategoryRock     = "rock"
	CategoryPaper    = "paper"
	CategoryScissors = "scissors"
)

// CardDefinition is an immutable catalog entry seeded at startup. Match cards
// reference definitions by id; definitions are never mutated after seeding.
type CardDefinition struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Power    int    `json:"power"`
	Active   bool   `json:"active"`
}

// Card is the logical card used by game logic: a definition stripped of
// persistence concerns.
type Card struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Power    int    `json:"power"`
}

// Name renders a human-readable card name, e.g. "rock-3". Used in the
// finished-match turn log sent to the ledger.
func (c Card) Name() string {
	return fmt.Sprintf("%s-%d", c.Category, c.Power)
}

// MatchCard is one physical card dealt into a match. Once Used flips to true
// and RoundUsed is set, the row is never modified again.
type MatchCard struct {
	ID        int64     `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	PlayerID  string    `json:"player_id"`
	CardDefID int       `json:"card_def_id"`
	Used      bool      `json:"used"`
	RoundUsed *int      `json:"round_used,omitempty"`
}

// HandCard pairs a match card id with its resolved definition, as returned to
// the owning player.
type HandCard struct {
	MatchCardID int64 `json:"match_card_id"`
	Card        Card  `json:"card"`
}

// PlayedCard is a card that has already been used, with the round it was
// played in.
type PlayedCard struct {
	Card      Card `json:"card"`
	RoundUsed int  `json:"round_used"`
}
