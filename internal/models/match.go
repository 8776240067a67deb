package models

import "github.com/google/uuid"

// Match statuses. A match moves from in_progress to finished exactly once and
// never reopens.
const (
	MatchStatusInProgress = "in_progress"
	MatchStatusFinished   = "finished"
)

// Match is the aggregate root for one game session between two players.
// Winner stays nil while the match is in progress, and remains nil after a
// finished match that ended in a draw.
type Match struct {
	ID           uuid.UUID `json:"id"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id"`
	Status       string    `json:"status"`
	CurrentRound int       `json:"current_round"`
	PointsP1     int       `json:"points_p1"`
	PointsP2     int       `json:"points_p2"`
	Winner       *string   `json:"winner"`
}

// Opponent returns the other participant's id, or "" if playerID is not part
// of the match.
func (m *Match) Opponent(playerID string) string {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	}
	return ""
}

// HasPlayer reports whether playerID participates in the match.
func (m *Match) HasPlayer(playerID string) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// MatchRound is the persisted record of one resolved round. WinnerID is nil
// for a drawn round.
type MatchRound struct {
	ID          int64     `json:"id"`
	MatchID     uuid.UUID `json:"match_id"`
	RoundNumber int       `json:"round_number"`
	CardP1ID    int64     `json:"card_p1_id"`
	CardP2ID    int64     `json:"card_p2_id"`
	WinnerID    *string   `json:"winner_id"`
	Reason      string    `json:"reason"`
}

// TurnEntry is one row of the turn log reported to the statistics ledger when
// a match finishes.
type TurnEntry struct {
	TurnNumber       int     `json:"turn_number"`
	Player1CardName  string  `json:"player1_card_name"`
	Player2CardName  string  `json:"player2_card_name"`
	WinnerExternalID *string `json:"winner_external_id"`
}
