// internal/handlers/cards.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lucasbarros/cardclash/internal/database"
)

// ListCardsHandler returns the full card catalog. Public: clients browse
// cards before they ever authenticate.
func ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cards, err := database.AllCardDefinitions(r.Context())
	if err != nil {
		http.Error(w, "failed to load cards", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(cards),
		"cards": cards,
	})
}

// CardDetailHandler returns a single catalog entry by id (/cards/{id}).
func CardDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/cards/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid card id", http.StatusBadRequest)
		return
	}

	card, err := database.GetCardDefinition(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load card", http.StatusInternalServerError)
		return
	}
	if card == nil {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HealthHandler is the liveness probe.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
