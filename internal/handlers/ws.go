// internal/handlers/ws.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/engine"
	"github.com/lucasbarros/cardclash/internal/models"
)

// MatchEvent is pushed to websocket subscribers of a match so clients don't
// have to poll the state endpoint.
type MatchEvent struct {
	Type        string  `json:"type"` // "round_resolved" or "match_finished"
	Round       int     `json:"round,omitempty"`
	Winner      *string `json:"winner,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	PointsP1    int     `json:"points_p1"`
	PointsP2    int     `json:"points_p2"`
	MatchWinner *string `json:"match_winner,omitempty"`
}

// MatchEventHub fans match events out to the websocket connections watching
// each match. Connections are registered per match id and dropped on the
// first failed write.
type MatchEventHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*websocket.Conn]struct{}
}

func NewMatchEventHub() *MatchEventHub {
	return &MatchEventHub{subs: make(map[uuid.UUID]map[*websocket.Conn]struct{})}
}

func (h *MatchEventHub) Subscribe(matchID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[matchID][c] = struct{}{}
}

func (h *MatchEventHub) Unsubscribe(matchID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[matchID], c)
	if len(h.subs[matchID]) == 0 {
		delete(h.subs, matchID)
	}
}

// Publish sends the event to every subscriber of the match. Writes are
// bounded; a subscriber that cannot keep up is dropped.
func (h *MatchEventHub) Publish(matchID uuid.UUID, ev MatchEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs[matchID]))
	for c := range h.subs[matchID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := wsjson.Write(ctx, c, ev)
		cancel()
		if err != nil {
			h.Unsubscribe(matchID, c)
			c.Close(websocket.StatusPolicyViolation, "write failed")
		}
	}
}

// RoundResolvedEvent converts an engine move result into the wire event.
func RoundResolvedEvent(res engine.MoveResult) MatchEvent {
	var winner *string
	if res.Winner != "" {
		w := res.Winner
		winner = &w
	}
	return MatchEvent{
		Type:        "round_resolved",
		Round:       res.Round,
		Winner:      winner,
		Reason:      res.Reason,
		PointsP1:    res.PointsP1,
		PointsP2:    res.PointsP2,
		MatchWinner: res.MatchWinner,
	}
}

// MatchFinishedEvent converts a finished match into the wire event.
func MatchFinishedEvent(m models.Match) MatchEvent {
	return MatchEvent{
		Type:        "match_finished",
		PointsP1:    m.PointsP1,
		PointsP2:    m.PointsP2,
		MatchWinner: m.Winner,
	}
}

// MatchWSHandler upgrades the connection for a specific match
// (/matches/ws/{match_id}). The caller must be a participant; the connection
// then receives MatchEvents until either side closes.
func MatchWSHandler(logger *logrus.Logger, hub *MatchEventHub, svc MatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/matches/ws/")
		matchID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid match id (/matches/ws/{match_id})", http.StatusBadRequest)
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// Participation check doubles as the existence check.
		if _, err := svc.GetState(r.Context(), matchID, caller); err != nil {
			writeEngineError(w, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"match"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error for match %s: %v", matchID, err)
			return
		}

		hub.Subscribe(matchID, c)
		logger.WithFields(logrus.Fields{
			"match":  matchID,
			"player": caller,
			"remote": r.RemoteAddr,
		}).Info("match watcher connected")

		defer func() {
			hub.Unsubscribe(matchID, c)
			c.Close(websocket.StatusNormalClosure, "")
			logger.WithFields(logrus.Fields{
				"match":  matchID,
				"player": caller,
			}).Info("match watcher disconnected")
		}()

		// Subscribers are read-only; block until the peer goes away.
		ctx := r.Context()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}
}
