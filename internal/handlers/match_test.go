// internal/handlers/match_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasbarros/cardclash/internal/auth"
	"github.com/lucasbarros/cardclash/internal/engine"
	"github.com/lucasbarros/cardclash/internal/models"
)

// stubService lets each test plug in just the behavior it exercises.
type stubService struct {
	createMatch       func(ctx context.Context, player1ID, player2ID string) (*models.Match, []models.HandCard, error)
	submitMove        func(ctx context.Context, matchID uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error)
	getState          func(ctx context.Context, matchID uuid.UUID, playerID string) (*engine.MatchState, error)
	listActiveMatches func(ctx context.Context, playerID string) ([]models.Match, error)
	surrender         func(ctx context.Context, matchID uuid.UUID, playerID string) (*models.Match, error)
}

func (s *stubService) CreateMatch(ctx context.Context, p1, p2 string) (*models.Match, []models.HandCard, error) {
	return s.createMatch(ctx, p1, p2)
}

func (s *stubService) SubmitMove(ctx context.Context, matchID uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error) {
	return s.submitMove(ctx, matchID, playerID, sel)
}

func (s *stubService) GetState(ctx context.Context, matchID uuid.UUID, playerID string) (*engine.MatchState, error) {
	return s.getState(ctx, matchID, playerID)
}

func (s *stubService) ListActiveMatches(ctx context.Context, playerID string) ([]models.Match, error) {
	return s.listActiveMatches(ctx, playerID)
}

func (s *stubService) Surrender(ctx context.Context, matchID uuid.UUID, playerID string) (*models.Match, error) {
	return s.surrender(ctx, matchID, playerID)
}

func tokenFor(t *testing.T, playerID string) string {
	t.Helper()
	auth.Init()
	token, err := auth.CreateJWT(playerID)
	require.NoError(t, err)
	return token
}

func authedRequest(t *testing.T, method, target, playerID string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, playerID))
	return req
}

func TestCreateMatch(t *testing.T) {
	matchID := uuid.New()
	svc := &stubService{
		createMatch: func(ctx context.Context, p1, p2 string) (*models.Match, []models.HandCard, error) {
			assert.Equal(t, "alice", p1)
			assert.Equal(t, "bob", p2)
			return &models.Match{ID: matchID, Player1ID: p1, Player2ID: p2, Status: models.MatchStatusInProgress, CurrentRound: 1},
				[]models.HandCard{{MatchCardID: 1, Card: models.Card{ID: 3, Category: "rock", Power: 4}}},
				nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/matches", "alice",
		map[string]string{"player1_id": "alice", "player2_id": "bob"})
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp createMatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, matchID, resp.MatchID)
	assert.Equal(t, "alice", resp.PlayerID)
	assert.Equal(t, models.MatchStatusInProgress, resp.Status)
	require.Len(t, resp.Hand, 1)
	assert.Equal(t, "rock", resp.Hand[0].Card.Category)
}

func TestCreateMatchRequiresOwnIdentity(t *testing.T) {
	svc := &stubService{}

	req := authedRequest(t, http.MethodPost, "/matches", "mallory",
		map[string]string{"player1_id": "alice", "player2_id": "bob"})
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateMatchRejectsUnauthenticated(t *testing.T) {
	svc := &stubService{}

	req := httptest.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMatchBadPayload(t *testing.T) {
	svc := &stubService{}

	req := httptest.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(`{not json`))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "alice"))
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMatchInvalidPlayers(t *testing.T) {
	svc := &stubService{
		createMatch: func(ctx context.Context, p1, p2 string) (*models.Match, []models.HandCard, error) {
			return nil, nil, engine.ErrInvalidPlayers
		},
	}

	req := authedRequest(t, http.MethodPost, "/matches", "alice",
		map[string]string{"player1_id": "alice", "player2_id": "alice"})
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMatchesDefaultsToCaller(t *testing.T) {
	svc := &stubService{
		listActiveMatches: func(ctx context.Context, playerID string) ([]models.Match, error) {
			assert.Equal(t, "alice", playerID)
			return nil, nil
		},
	}

	req := authedRequest(t, http.MethodGet, "/matches", "alice", nil)
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Empty list serializes as [], never null.
	matches, ok := resp["matches"]
	require.True(t, ok)
	assert.Empty(t, matches)
}

func TestListMatchesOtherPlayerForbidden(t *testing.T) {
	svc := &stubService{}

	req := authedRequest(t, http.MethodGet, "/matches?player_id=bob", "alice", nil)
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitMoveWaiting(t *testing.T) {
	matchID := uuid.New()
	svc := &stubService{
		submitMove: func(ctx context.Context, id uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error) {
			assert.Equal(t, matchID, id)
			assert.Equal(t, "alice", playerID)
			require.NotNil(t, sel.MatchCardID)
			assert.EqualValues(t, 7, *sel.MatchCardID)
			return &engine.MoveResult{Waiting: true, MatchCardID: 7, Round: 1}, nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/matches/"+matchID.String()+"/move", "alice",
		map[string]any{"player_id": "alice", "match_card_id": 7})
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "waiting_for_opponent", resp["status"])
}

func TestSubmitMoveResolved(t *testing.T) {
	matchID := uuid.New()
	winner := "alice"
	svc := &stubService{
		submitMove: func(ctx context.Context, id uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error) {
			require.NotNil(t, sel.CardIndex)
			assert.Equal(t, 2, *sel.CardIndex)
			return &engine.MoveResult{
				MatchCardID:   9,
				Round:         3,
				Winner:        engine.WinnerP1,
				Reason:        "rock beats scissors",
				PointsP1:      2,
				PointsP2:      1,
				MatchFinished: true,
				MatchWinner:   &winner,
			}, nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/matches/"+matchID.String()+"/move", "alice",
		map[string]any{"player_id": "alice", "card_index": 2})
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp moveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Round)
	require.NotNil(t, resp.Winner)
	assert.Equal(t, engine.WinnerP1, *resp.Winner)
	assert.Equal(t, "rock beats scissors", resp.Reason)
	assert.True(t, resp.MatchFinished)
	require.NotNil(t, resp.MatchWinner)
	assert.Equal(t, "alice", *resp.MatchWinner)
}

func TestSubmitMoveForAnotherPlayerForbidden(t *testing.T) {
	svc := &stubService{}

	req := authedRequest(t, http.MethodPost, "/matches/"+uuid.NewString()+"/move", "mallory",
		map[string]any{"player_id": "alice", "card_index": 0})
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitMoveErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"match not found", engine.ErrMatchNotFound, http.StatusNotFound},
		{"match finished", engine.ErrMatchFinished, http.StatusConflict},
		{"card already used", engine.ErrCardUsed, http.StatusConflict},
		{"already moved this round", engine.ErrAlreadyMoved, http.StatusConflict},
		{"not a participant", engine.ErrNotParticipant, http.StatusForbidden},
		{"invalid card", engine.ErrInvalidCard, http.StatusBadRequest},
		{"index out of range", engine.ErrIndexOutOfRange, http.StatusBadRequest},
		{"bad selector", engine.ErrBadSelector, http.StatusBadRequest},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				submitMove: func(ctx context.Context, id uuid.UUID, playerID string, sel engine.MoveSelector) (*engine.MoveResult, error) {
					return nil, tc.err
				},
			}

			req := authedRequest(t, http.MethodPost, "/matches/"+uuid.NewString()+"/move", "alice",
				map[string]any{"player_id": "alice", "card_index": 0})
			rec := httptest.NewRecorder()
			MatchItemHandler(svc)(rec, req)

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestGetMatchState(t *testing.T) {
	matchID := uuid.New()
	svc := &stubService{
		getState: func(ctx context.Context, id uuid.UUID, playerID string) (*engine.MatchState, error) {
			assert.Equal(t, "alice", playerID)
			return &engine.MatchState{
				MatchID:      id,
				Status:       models.MatchStatusInProgress,
				CurrentRound: 2,
				PointsP1:     1,
			}, nil
		},
	}

	req := authedRequest(t, http.MethodGet, "/matches/"+matchID.String(), "alice", nil)
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Hand and used-card lists are always present, even when empty.
	assert.JSONEq(t, "[]", string(resp["player_hand"]))
	assert.JSONEq(t, "[]", string(resp["used_cards"]))
	assert.JSONEq(t, "[]", string(resp["opponent_used_cards"]))
}

func TestGetMatchStateInvalidID(t *testing.T) {
	svc := &stubService{}

	req := authedRequest(t, http.MethodGet, "/matches/not-a-uuid", "alice", nil)
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSurrenderHandler(t *testing.T) {
	matchID := uuid.New()
	winner := "bob"
	svc := &stubService{
		surrender: func(ctx context.Context, id uuid.UUID, playerID string) (*models.Match, error) {
			assert.Equal(t, matchID, id)
			assert.Equal(t, "alice", playerID)
			return &models.Match{ID: id, Status: models.MatchStatusFinished, Winner: &winner}, nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/matches/"+matchID.String()+"/surrender", "alice", nil)
	rec := httptest.NewRecorder()
	MatchItemHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp surrenderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.MatchStatusFinished, resp.Status)
	require.NotNil(t, resp.Winner)
	assert.Equal(t, "bob", *resp.Winner)
}

func TestCookieAuthAccepted(t *testing.T) {
	svc := &stubService{
		listActiveMatches: func(ctx context.Context, playerID string) ([]models.Match, error) {
			assert.Equal(t, "alice", playerID)
			return []models.Match{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	req.Header.Set("Cookie", "auth_token="+tokenFor(t, "alice")+"; other=1")
	rec := httptest.NewRecorder()
	MatchesHandler(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
