// internal/handlers/match.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/cache"
	"github.com/lucasbarros/cardclash/internal/engine"
	"github.com/lucasbarros/cardclash/internal/models"
)

// MatchService is what the HTTP boundary needs from the match engine.
// *engine.Engine satisfies it; tests substitute a stub.
type MatchService interface {
	CreateMatch(ctx context.Context, player1ID, player2ID string) (*models.Match, []models.HandCard, error)
	SubmitMove(ctx context.Context, matchID uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error)
	GetState(ctx context.Context, matchID uuid.UUID, playerID string) (*engine.MatchState, error)
	ListActiveMatches(ctx context.Context, playerID string) ([]models.Match, error)
	Surrender(ctx context.Context, matchID uuid.UUID, playerID string) (*models.Match, error)
}

type createMatchRequest struct {
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
}

type createMatchResponse struct {
	MatchID  uuid.UUID         `json:"match_id"`
	PlayerID string            `json:"player_id"`
	Hand     []models.HandCard `json:"hand"`
	Status   string            `json:"status"`
}

type moveRequest struct {
	PlayerID    string `json:"player_id"`
	MatchCardID *int64 `json:"match_card_id,omitempty"`
	CardIndex   *int   `json:"card_index,omitempty"`
}

type moveResponse struct {
	Round         int     `json:"round"`
	Winner        *string `json:"winner"`
	Reason        string  `json:"reason"`
	PointsP1      int     `json:"points_p1"`
	PointsP2      int     `json:"points_p2"`
	MatchFinished bool    `json:"match_finished"`
	MatchWinner   *string `json:"match_winner"`
}

type surrenderResponse struct {
	MatchID uuid.UUID `json:"match_id"`
	Status  string    `json:"status"`
	Winner  *string   `json:"winner"`
}

// MatchesHandler serves the /matches collection: POST creates a match, GET
// lists the caller's active matches.
func MatchesHandler(svc MatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createMatch(svc, w, r)
		case http.MethodGet:
			listMatches(svc, w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func createMatch(svc MatchService, w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Player1ID != caller {
		http.Error(w, "you can only create matches as yourself", http.StatusForbidden)
		return
	}

	m, hand, err := svc.CreateMatch(r.Context(), req.Player1ID, req.Player2ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createMatchResponse{
		MatchID:  m.ID,
		PlayerID: req.Player1ID,
		Hand:     hand,
		Status:   m.Status,
	})
}

func listMatches(svc MatchService, w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = caller
	}
	if playerID != caller {
		http.Error(w, "you can only list your own matches", http.StatusForbidden)
		return
	}

	matches, err := svc.ListActiveMatches(r.Context(), playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// MatchItemHandler serves /matches/{id}, /matches/{id}/move and
// /matches/{id}/surrender.
func MatchItemHandler(svc MatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/matches/")
		parts := strings.SplitN(rest, "/", 2)

		matchID, err := uuid.Parse(parts[0])
		if err != nil {
			http.Error(w, "invalid match id", http.StatusBadRequest)
			return
		}

		action := ""
		if len(parts) == 2 {
			action = parts[1]
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			getMatchState(svc, w, r, matchID)
		case action == "move" && r.Method == http.MethodPost:
			submitMove(svc, w, r, matchID)
		case action == "surrender" && r.Method == http.MethodPost:
			surrender(svc, w, r, matchID)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
}

func getMatchState(svc MatchService, w http.ResponseWriter, r *http.Request, matchID uuid.UUID) {
	caller, err := requireCaller(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = caller
	}
	if playerID != caller {
		http.Error(w, "you can only view your own match state", http.StatusForbidden)
		return
	}

	state, err := svc.GetState(r.Context(), matchID, playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if state.PlayerHand == nil {
		state.PlayerHand = []models.HandCard{}
	}
	if state.UsedCards == nil {
		state.UsedCards = []models.PlayedCard{}
	}
	if state.OpponentUsedCards == nil {
		state.OpponentUsedCards = []models.PlayedCard{}
	}
	writeJSON(w, http.StatusOK, state)
}

func submitMove(svc MatchService, w http.ResponseWriter, r *http.Request, matchID uuid.UUID) {
	caller, err := requireCaller(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.PlayerID != caller {
		http.Error(w, "you can only submit moves for yourself", http.StatusForbidden)
		return
	}

	res, err := svc.SubmitMove(r.Context(), matchID, req.PlayerID, engine.MoveSelector{
		MatchCardID: req.MatchCardID,
		CardIndex:   req.CardIndex,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if cache.Enabled() {
		record := cache.MoveRecord{
			MatchID:     matchID,
			PlayerID:    req.PlayerID,
			MatchCardID: res.MatchCardID,
			Round:       res.Round,
			Timestamp:   time.Now().Unix(),
		}
		go func() {
			if err := cache.PublishMoveRecord(context.Background(), record); err != nil {
				log.Warnf("failed to publish move record for match %s: %v", matchID, err)
			}
		}()
	}

	if res.Waiting {
		writeJSON(w, http.StatusOK, map[string]string{"status": "waiting_for_opponent"})
		return
	}

	var winner *string
	if res.Winner != "" {
		winner = &res.Winner
	}
	writeJSON(w, http.StatusOK, moveResponse{
		Round:         res.Round,
		Winner:        winner,
		Reason:        res.Reason,
		PointsP1:      res.PointsP1,
		PointsP2:      res.PointsP2,
		MatchFinished: res.MatchFinished,
		MatchWinner:   res.MatchWinner,
	})
}

func surrender(svc MatchService, w http.ResponseWriter, r *http.Request, matchID uuid.UUID) {
	caller, err := requireCaller(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	m, err := svc.Surrender(r.Context(), matchID, caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, surrenderResponse{
		MatchID: m.ID,
		Status:  m.Status,
		Winner:  m.Winner,
	})
}

// writeEngineError maps engine sentinel errors onto HTTP status codes. The
// error text itself names the violated invariant, so it is passed through to
// the caller for the client-error cases.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrMatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrMatchFinished),
		errors.Is(err, engine.ErrCardUsed),
		errors.Is(err, engine.ErrAlreadyMoved):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrNotParticipant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, engine.ErrInvalidPlayers),
		errors.Is(err, engine.ErrInvalidCard),
		errors.Is(err, engine.ErrIndexOutOfRange),
		errors.Is(err, engine.ErrBadSelector):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// Includes insufficient deck size: a catalog misconfiguration, not a
		// caller mistake.
		log.Errorf("match operation failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}
