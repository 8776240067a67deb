// internal/engine/store.go
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/lucasbarros/cardclash/internal/models"
)

// Store is the persistence boundary of the match engine. The production
// implementation lives in internal/database on top of pgx; tests substitute
// an in-memory fake.
type Store interface {
	// ListActiveCardDefinitions returns the catalog entries eligible for new
	// decks.
	ListActiveCardDefinitions(ctx context.Context) ([]models.CardDefinition, error)

	// CreateMatch persists a match and all its dealt cards in one atomic
	// transaction.
	CreateMatch(ctx context.Context, m *models.Match, cards []models.MatchCard) error

	// GetMatch returns ErrMatchNotFound for an unknown id.
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)

	// PlayerHand returns the player's unused cards in instance-creation order.
	PlayerHand(ctx context.Context, matchID uuid.UUID, playerID string) ([]models.HandCard, error)

	// UsedCards returns the player's already-played cards with the round each
	// was used in.
	UsedCards(ctx context.Context, matchID uuid.UUID, playerID string) ([]models.PlayedCard, error)

	// ListActiveMatches returns the in-progress matches the player takes part in.
	ListActiveMatches(ctx context.Context, playerID string) ([]models.Match, error)

	// TurnLog returns one entry per resolved round, ordered by round number.
	TurnLog(ctx context.Context, matchID uuid.UUID) ([]models.TurnEntry, error)

	// WithMatch runs fn inside a transaction holding a write lock on the match
	// row, so concurrent move submissions for the same match serialize. The
	// transaction commits iff fn returns nil. Returns ErrMatchNotFound for an
	// unknown id.
	WithMatch(ctx context.Context, matchID uuid.UUID, fn func(MatchTx) error) error
}

// MatchTx is the view of a single match inside a WithMatch transaction.
type MatchTx interface {
	// Match returns the locked match row. Mutations become visible to other
	// callers only after UpdateMatch and commit.
	Match() *models.Match

	// UnusedCards returns the player's unused cards ordered by instance id.
	// Positional move selectors index into this slice.
	UnusedCards(playerID string) ([]models.MatchCard, error)

	// PlayerCard looks up a card by instance id, scoped to the given owner.
	// Returns (nil, nil) when no such card exists for that player.
	PlayerCard(cardID int64, playerID string) (*models.MatchCard, error)

	// CardInRound returns the card the player used in the given round, or
	// (nil, nil) if the player has not moved that round.
	CardInRound(playerID string, round int) (*models.MatchCard, error)

	// MarkCardUsed flips the card to used and records the round.
	MarkCardUsed(cardID int64, round int) error

	// UpdateMatch writes back points, round counter, status and winner.
	UpdateMatch(m *models.Match) error

	// InsertRound records a resolved round.
	InsertRound(r *models.MatchRound) error

	// CardDefinition resolves a catalog entry by id.
	CardDefinition(id int) (*models.CardDefinition, error)
}
