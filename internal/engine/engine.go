// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/models"
	"github.com/lucasbarros/cardclash/internal/monitor"
	"github.com/lucasbarros/cardclash/internal/notifier"
)

// Notifier reports a finished match to the external statistics ledger. The
// engine only cares that the call is bounded; retries are the notifier's
// business.
type Notifier interface {
	FinalizeMatch(ctx context.Context, summary notifier.Summary) bool
}

// MoveSelector identifies the card a player wants to play. Exactly one of the
// two fields must be set. MatchCardID addresses a card instance directly;
// CardIndex addresses the player's unused hand positionally. Index resolution
// is computed fresh per call against the live unused hand, never cached, since
// indices shift as cards are used.
type MoveSelector struct {
	MatchCardID *int64
	CardIndex   *int
}

// MoveResult is the outcome of a move submission. When Waiting is true the
// caller moved first this round and nothing else is meaningful except Round
// and MatchCardID.
type MoveResult struct {
	Waiting     bool
	MatchCardID int64
	Round       int
	Winner      string // WinnerP1, WinnerP2 or "" for a draw
	Reason      string
	PointsP1    int
	PointsP2    int

	MatchFinished bool
	MatchWinner   *string
}

// MatchState is the full per-player view of a match. The opponent's unused
// hand is deliberately absent so a player cannot learn what the opponent has
// left.
type MatchState struct {
	MatchID           uuid.UUID           `json:"match_id"`
	Status            string              `json:"status"`
	CurrentRound      int                 `json:"current_round"`
	PointsP1          int                 `json:"points_p1"`
	PointsP2          int                 `json:"points_p2"`
	PlayerHand        []models.HandCard   `json:"player_hand"`
	UsedCards         []models.PlayedCard `json:"used_cards"`
	OpponentUsedCards []models.PlayedCard `json:"opponent_used_cards"`
	MatchWinner       *string             `json:"match_winner"`
}

// Engine orchestrates the match lifecycle: creation, move submission, round
// resolution, state queries and completion. Concurrent operations on the same
// match serialize through the store's per-match lock; the Engine itself keeps
// no per-match state.
type Engine struct {
	store     Store
	notifier  Notifier
	handSize  int
	maxRounds int

	// OnRoundResolved, if set, fires after a round resolves (commit included).
	OnRoundResolved func(matchID uuid.UUID, res MoveResult)
	// OnMatchFinished, if set, fires once when a match reaches finished,
	// whether by round completion or surrender.
	OnMatchFinished func(m models.Match)

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds an Engine. notifier may be nil, in which case finished matches
// are not reported anywhere.
func New(store Store, n Notifier, handSize, maxRounds int) *Engine {
	return &Engine{
		store:     store,
		notifier:  n,
		handSize:  handSize,
		maxRounds: maxRounds,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateMatch deals two disjoint hands from the active catalog and persists
// the new match atomically. It returns the match and player1's hand for
// immediate use by the caller.
func (e *Engine) CreateMatch(ctx context.Context, player1ID, player2ID string) (*models.Match, []models.HandCard, error) {
	if player1ID == "" || player2ID == "" || player1ID == player2ID {
		return nil, nil, ErrInvalidPlayers
	}

	defs, err := e.store.ListActiveCardDefinitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load card catalog: %w", err)
	}

	e.mu.Lock()
	deck := BuildDeck(defs, e.rng)
	e.mu.Unlock()

	handP1, handP2, err := DealTwoHands(deck, e.handSize)
	if err != nil {
		return nil, nil, err
	}

	m := &models.Match{
		ID:           uuid.New(),
		Player1ID:    player1ID,
		Player2ID:    player2ID,
		Status:       models.MatchStatusInProgress,
		CurrentRound: 1,
	}

	cards := make([]models.MatchCard, 0, len(handP1)+len(handP2))
	for _, c := range handP1 {
		cards = append(cards, models.MatchCard{MatchID: m.ID, PlayerID: player1ID, CardDefID: c.ID})
	}
	for _, c := range handP2 {
		cards = append(cards, models.MatchCard{MatchID: m.ID, PlayerID: player2ID, CardDefID: c.ID})
	}

	if err := e.store.CreateMatch(ctx, m, cards); err != nil {
		return nil, nil, fmt.Errorf("persist match: %w", err)
	}

	hand, err := e.store.PlayerHand(ctx, m.ID, player1ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load created hand: %w", err)
	}

	monitor.MatchesCreated.Inc()
	return m, hand, nil
}

// SubmitMove marks the selected card as played in the current round. If the
// opponent has not moved yet this round, the result carries Waiting and no
// resolution happens. Otherwise the round resolves in the same transaction:
// points and round counter update, and the match may finish.
//
// The card-mark, opponent-check and resolution all run under the store's
// per-match write lock, so two racing submissions can neither both skip
// resolution nor resolve the same round twice.
func (e *Engine) SubmitMove(ctx context.Context, matchID uuid.UUID, playerID string, sel MoveSelector) (*MoveResult, error) {
	if (sel.MatchCardID == nil) == (sel.CardIndex == nil) {
		return nil, ErrBadSelector
	}

	var res MoveResult
	var finished models.Match

	err := e.store.WithMatch(ctx, matchID, func(tx MatchTx) error {
		m := tx.Match()
		if m.Status != models.MatchStatusInProgress {
			return ErrMatchFinished
		}
		if !m.HasPlayer(playerID) {
			return ErrNotParticipant
		}

		// A player gets exactly one move per round.
		if prior, err := tx.CardInRound(playerID, m.CurrentRound); err != nil {
			return err
		} else if prior != nil {
			return ErrAlreadyMoved
		}

		card, err := e.resolveSelector(tx, playerID, sel)
		if err != nil {
			return err
		}

		if err := tx.MarkCardUsed(card.ID, m.CurrentRound); err != nil {
			return err
		}

		opponent, err := tx.CardInRound(m.Opponent(playerID), m.CurrentRound)
		if err != nil {
			return err
		}
		if opponent == nil {
			res = MoveResult{Waiting: true, MatchCardID: card.ID, Round: m.CurrentRound}
			return nil
		}

		r, err := e.resolveRound(tx, m, playerID, card, opponent)
		if err != nil {
			return err
		}
		res = *r
		res.MatchCardID = card.ID
		if res.MatchFinished {
			finished = *m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Waiting {
		monitor.RoundsResolved.Inc()
		if e.OnRoundResolved != nil {
			e.OnRoundResolved(matchID, res)
		}
	}
	if res.MatchFinished {
		e.finishMatch(finished)
	}
	return &res, nil
}

// resolveSelector turns a MoveSelector into a concrete unused card owned by
// the player, or the appropriate rejection.
func (e *Engine) resolveSelector(tx MatchTx, playerID string, sel MoveSelector) (*models.MatchCard, error) {
	if sel.MatchCardID != nil {
		card, err := tx.PlayerCard(*sel.MatchCardID, playerID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, ErrInvalidCard
		}
		if card.Used {
			return nil, ErrCardUsed
		}
		return card, nil
	}

	hand, err := tx.UnusedCards(playerID)
	if err != nil {
		return nil, err
	}
	idx := *sel.CardIndex
	if idx < 0 || idx >= len(hand) {
		return nil, fmt.Errorf("%w: you have %d cards available", ErrIndexOutOfRange, len(hand))
	}
	return &hand[idx], nil
}

// resolveRound runs the outcome resolver over the two committed moves for the
// current round and applies the verdict to the match. Called with the match
// row still locked. moverID owns moverCard; the other card belongs to the
// opponent. Cards are re-oriented to the match's player1/player2 seats before
// resolution so points always land on the right side regardless of move order.
func (e *Engine) resolveRound(tx MatchTx, m *models.Match, moverID string, moverCard, otherCard *models.MatchCard) (*MoveResult, error) {
	cardP1, cardP2 := moverCard, otherCard
	if moverID != m.Player1ID {
		cardP1, cardP2 = otherCard, moverCard
	}

	defP1, err := tx.CardDefinition(cardP1.CardDefID)
	if err != nil {
		return nil, err
	}
	defP2, err := tx.CardDefinition(cardP2.CardDefID)
	if err != nil {
		return nil, err
	}

	result := Resolve(
		models.Card{ID: defP1.ID, Category: defP1.Category, Power: defP1.Power},
		models.Card{ID: defP2.ID, Category: defP2.Category, Power: defP2.Power},
	)

	var roundWinner *string
	switch result.Winner {
	case WinnerP1:
		m.PointsP1++
		roundWinner = &m.Player1ID
	case WinnerP2:
		m.PointsP2++
		roundWinner = &m.Player2ID
	}

	round := m.CurrentRound
	if err := tx.InsertRound(&models.MatchRound{
		MatchID:     m.ID,
		RoundNumber: round,
		CardP1ID:    cardP1.ID,
		CardP2ID:    cardP2.ID,
		WinnerID:    roundWinner,
		Reason:      result.Reason,
	}); err != nil {
		return nil, err
	}

	m.CurrentRound++
	if m.CurrentRound > e.maxRounds {
		m.Status = models.MatchStatusFinished
		switch {
		case m.PointsP1 > m.PointsP2:
			m.Winner = &m.Player1ID
		case m.PointsP2 > m.PointsP1:
			m.Winner = &m.Player2ID
		}
	}

	if err := tx.UpdateMatch(m); err != nil {
		return nil, err
	}

	return &MoveResult{
		Round:         round,
		Winner:        result.Winner,
		Reason:        result.Reason,
		PointsP1:      m.PointsP1,
		PointsP2:      m.PointsP2,
		MatchFinished: m.Status == models.MatchStatusFinished,
		MatchWinner:   m.Winner,
	}, nil
}

// GetState returns the querying player's view of the match.
func (e *Engine) GetState(ctx context.Context, matchID uuid.UUID, playerID string) (*MatchState, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasPlayer(playerID) {
		return nil, ErrNotParticipant
	}

	hand, err := e.store.PlayerHand(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	used, err := e.store.UsedCards(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	opponentUsed, err := e.store.UsedCards(ctx, matchID, m.Opponent(playerID))
	if err != nil {
		return nil, err
	}

	return &MatchState{
		MatchID:           m.ID,
		Status:            m.Status,
		CurrentRound:      m.CurrentRound,
		PointsP1:          m.PointsP1,
		PointsP2:          m.PointsP2,
		PlayerHand:        hand,
		UsedCards:         used,
		OpponentUsedCards: opponentUsed,
		MatchWinner:       m.Winner,
	}, nil
}

// ListActiveMatches returns the caller's in-progress matches.
func (e *Engine) ListActiveMatches(ctx context.Context, playerID string) ([]models.Match, error) {
	return e.store.ListActiveMatches(ctx, playerID)
}

// Surrender finishes the match immediately with the other player as winner,
// bypassing round completion. Finalization side effects are the same as a
// normal completion.
func (e *Engine) Surrender(ctx context.Context, matchID uuid.UUID, playerID string) (*models.Match, error) {
	var finished models.Match
	err := e.store.WithMatch(ctx, matchID, func(tx MatchTx) error {
		m := tx.Match()
		if m.Status != models.MatchStatusInProgress {
			return ErrMatchFinished
		}
		if !m.HasPlayer(playerID) {
			return ErrNotParticipant
		}

		winner := m.Opponent(playerID)
		m.Status = models.MatchStatusFinished
		m.Winner = &winner
		if err := tx.UpdateMatch(m); err != nil {
			return err
		}
		finished = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.finishMatch(finished)
	return &finished, nil
}

// finishMatch runs the completion side effects: metrics, the OnMatchFinished
// hook and the ledger notification. The notification is dispatched on a
// detached goroutine with a fresh context; the player-facing response never
// waits on the ledger, and a failed notification never touches match state.
func (e *Engine) finishMatch(m models.Match) {
	monitor.MatchesFinished.Inc()
	if e.OnMatchFinished != nil {
		e.OnMatchFinished(m)
	}
	if e.notifier == nil {
		return
	}

	go func() {
		ctx := context.Background()
		turns, err := e.store.TurnLog(ctx, m.ID)
		if err != nil {
			log.Errorf("failed to load turn log for match %s: %v", m.ID, err)
		}

		summary := notifier.Summary{
			ExternalMatchID:   m.ID.String(),
			Player1ExternalID: m.Player1ID,
			Player2ExternalID: m.Player2ID,
			WinnerExternalID:  m.Winner,
			Player1Score:      m.PointsP1,
			Player2Score:      m.PointsP2,
			Turns:             turns,
		}
		if !e.notifier.FinalizeMatch(ctx, summary) {
			log.Errorf("match %s finished but the ledger was never notified; stats may be stale", m.ID)
		}
	}()
}
