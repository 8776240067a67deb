// internal/database/match.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucasbarros/cardclash/internal/engine"
	"github.com/lucasbarros/cardclash/internal/models"
)

// MatchStore is the pgx-backed implementation of engine.Store. Per-match
// serialization comes from SELECT ... FOR UPDATE on the match row inside
// WithMatch: two racing submit_move calls for the same match queue on the row
// lock, so the second always observes the first's committed card mark.
type MatchStore struct {
	Pool *pgxpool.Pool
}

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{Pool: pool}
}

const matchColumns = `id, player1_id, player2_id, status, current_round, points_p1, points_p2, winner`

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.Status,
		&m.CurrentRound, &m.PointsP1, &m.PointsP2, &m.Winner)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MatchStore) ListActiveCardDefinitions(ctx context.Context) ([]models.CardDefinition, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, category, power, active FROM card_definitions WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCardDefinitions(rows)
}

func (s *MatchStore) CreateMatch(ctx context.Context, m *models.Match, cards []models.MatchCard) error {
	return pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO matches (id, player1_id, player2_id, status, current_round, points_p1, points_p2, winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.Player1ID, m.Player2ID, m.Status, m.CurrentRound, m.PointsP1, m.PointsP2, m.Winner,
		)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}

		for _, c := range cards {
			_, err := tx.Exec(ctx, `
				INSERT INTO match_cards (match_id, player_id, card_def_id, used, round_used)
				VALUES ($1, $2, $3, FALSE, NULL)`,
				c.MatchID, c.PlayerID, c.CardDefID,
			)
			if err != nil {
				return fmt.Errorf("insert match card: %w", err)
			}
		}
		return nil
	})
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := scanMatch(s.Pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, engine.ErrMatchNotFound
	}
	return m, err
}

func (s *MatchStore) PlayerHand(ctx context.Context, matchID uuid.UUID, playerID string) ([]models.HandCard, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT mc.id, d.id, d.category, d.power
		FROM match_cards mc
		JOIN card_definitions d ON d.id = mc.card_def_id
		WHERE mc.match_id=$1 AND mc.player_id=$2 AND NOT mc.used
		ORDER BY mc.id`,
		matchID, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hand []models.HandCard
	for rows.Next() {
		var hc models.HandCard
		if err := rows.Scan(&hc.MatchCardID, &hc.Card.ID, &hc.Card.Category, &hc.Card.Power); err != nil {
			return nil, err
		}
		hand = append(hand, hc)
	}
	return hand, rows.Err()
}

func (s *MatchStore) UsedCards(ctx context.Context, matchID uuid.UUID, playerID string) ([]models.PlayedCard, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT d.id, d.category, d.power, mc.round_used
		FROM match_cards mc
		JOIN card_definitions d ON d.id = mc.card_def_id
		WHERE mc.match_id=$1 AND mc.player_id=$2 AND mc.used
		ORDER BY mc.round_used`,
		matchID, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var played []models.PlayedCard
	for rows.Next() {
		var pc models.PlayedCard
		if err := rows.Scan(&pc.Card.ID, &pc.Card.Category, &pc.Card.Power, &pc.RoundUsed); err != nil {
			return nil, err
		}
		played = append(played, pc)
	}
	return played, rows.Err()
}

func (s *MatchStore) ListActiveMatches(ctx context.Context, playerID string) ([]models.Match, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status=$1 AND (player1_id=$2 OR player2_id=$2)
		ORDER BY id`,
		models.MatchStatusInProgress, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *MatchStore) TurnLog(ctx context.Context, matchID uuid.UUID) ([]models.TurnEntry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT r.round_number, d1.category, d1.power, d2.category, d2.power, r.winner_id
		FROM match_rounds r
		JOIN match_cards c1 ON c1.id = r.card_p1
		JOIN match_cards c2 ON c2.id = r.card_p2
		JOIN card_definitions d1 ON d1.id = c1.card_def_id
		JOIN card_definitions d2 ON d2.id = c2.card_def_id
		WHERE r.match_id=$1
		ORDER BY r.round_number`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []models.TurnEntry
	for rows.Next() {
		var entry models.TurnEntry
		var c1, c2 models.Card
		if err := rows.Scan(&entry.TurnNumber, &c1.Category, &c1.Power, &c2.Category, &c2.Power, &entry.WinnerExternalID); err != nil {
			return nil, err
		}
		entry.Player1CardName = c1.Name()
		entry.Player2CardName = c2.Name()
		turns = append(turns, entry)
	}
	return turns, rows.Err()
}

// WithMatch opens a transaction, locks the match row FOR UPDATE and hands a
// matchTx to fn. The lock is held until commit/rollback, which serializes all
// mutating operations on one match.
func (s *MatchStore) WithMatch(ctx context.Context, matchID uuid.UUID, fn func(engine.MatchTx) error) error {
	return pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		m, err := scanMatch(tx.QueryRow(ctx,
			`SELECT `+matchColumns+` FROM matches WHERE id=$1 FOR UPDATE`, matchID))
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.ErrMatchNotFound
		}
		if err != nil {
			return err
		}
		return fn(&matchTx{ctx: ctx, tx: tx, match: m})
	})
}

// matchTx implements engine.MatchTx on top of one open pgx transaction.
type matchTx struct {
	ctx   context.Context
	tx    pgx.Tx
	match *models.Match
}

func (t *matchTx) Match() *models.Match { return t.match }

func (t *matchTx) UnusedCards(playerID string) ([]models.MatchCard, error) {
	rows, err := t.tx.Query(t.ctx, `
		SELECT id, match_id, player_id, card_def_id, used, round_used
		FROM match_cards
		WHERE match_id=$1 AND player_id=$2 AND NOT used
		ORDER BY id`,
		t.match.ID, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.MatchCard
	for rows.Next() {
		var c models.MatchCard
		if err := rows.Scan(&c.ID, &c.MatchID, &c.PlayerID, &c.CardDefID, &c.Used, &c.RoundUsed); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (t *matchTx) PlayerCard(cardID int64, playerID string) (*models.MatchCard, error) {
	return t.scanCard(`
		SELECT id, match_id, player_id, card_def_id, used, round_used
		FROM match_cards
		WHERE id=$1 AND match_id=$2 AND player_id=$3`,
		cardID, t.match.ID, playerID,
	)
}

func (t *matchTx) CardInRound(playerID string, round int) (*models.MatchCard, error) {
	return t.scanCard(`
		SELECT id, match_id, player_id, card_def_id, used, round_used
		FROM match_cards
		WHERE match_id=$1 AND player_id=$2 AND round_used=$3`,
		t.match.ID, playerID, round,
	)
}

func (t *matchTx) scanCard(query string, args ...any) (*models.MatchCard, error) {
	var c models.MatchCard
	err := t.tx.QueryRow(t.ctx, query, args...).
		Scan(&c.ID, &c.MatchID, &c.PlayerID, &c.CardDefID, &c.Used, &c.RoundUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *matchTx) MarkCardUsed(cardID int64, round int) error {
	tag, err := t.tx.Exec(t.ctx,
		`UPDATE match_cards SET used=TRUE, round_used=$1 WHERE id=$2 AND NOT used`,
		round, cardID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return engine.ErrCardUsed
	}
	return nil
}

func (t *matchTx) UpdateMatch(m *models.Match) error {
	_, err := t.tx.Exec(t.ctx, `
		UPDATE matches
		SET status=$1, current_round=$2, points_p1=$3, points_p2=$4, winner=$5
		WHERE id=$6`,
		m.Status, m.CurrentRound, m.PointsP1, m.PointsP2, m.Winner, m.ID,
	)
	return err
}

func (t *matchTx) InsertRound(r *models.MatchRound) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO match_rounds (match_id, round_number, card_p1, card_p2, winner_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.MatchID, r.RoundNumber, r.CardP1ID, r.CardP2ID, r.WinnerID, r.Reason,
	)
	return err
}

func (t *matchTx) CardDefinition(id int) (*models.CardDefinition, error) {
	var def models.CardDefinition
	err := t.tx.QueryRow(t.ctx,
		`SELECT id, category, power, active FROM card_definitions WHERE id=$1`, id).
		Scan(&def.ID, &def.Category, &def.Power, &def.Active)
	if err != nil {
		return nil, err
	}
	return &def, nil
}
