// internal/engine/outcome.go
package engine

import (
	"fmt"

	"github.com/lucasbarros/cardclash/internal/models"
)

// Round winner sides. An empty winner means the round was a draw.
const (
	WinnerP1 = "p1"
	WinnerP2 = "p2"
)

// Beats maps each category to the category it defeats.
var Beats = map[string]string{
	models.CategoryRock:     models.CategoryScissors,
	models.CategoryScissors: models.CategoryPaper,
	models.CategoryPaper:    models.CategoryRock,
}

// RoundResult is the verdict of one resolved round.
type RoundResult struct {
	Winner string // WinnerP1, WinnerP2 or "" for a draw
	CardP1 models.Card
	CardP2 models.Card
	Reason string
}

// Resolve computes the outcome of a round between player1's and player2's
// cards. Same category falls back to a power comparison, where equal power is
// the only way to draw; across different categories the fixed beats relation
// always produces a winner.
func Resolve(cardP1, cardP2 models.Card) RoundResult {
	if cardP1.Category == cardP2.Category {
		switch {
		case cardP1.Power > cardP2.Power:
			return RoundResult{Winner: WinnerP1, CardP1: cardP1, CardP2: cardP2, Reason: "higher power"}
		case cardP1.Power < cardP2.Power:
			return RoundResult{Winner: WinnerP2, CardP1: cardP1, CardP2: cardP2, Reason: "higher power"}
		default:
			return RoundResult{Winner: "", CardP1: cardP1, CardP2: cardP2, Reason: "equal power"}
		}
	}

	if Beats[cardP1.Category] == cardP2.Category {
		return RoundResult{
			Winner: WinnerP1,
			CardP1: cardP1,
			CardP2: cardP2,
			Reason: fmt.Sprintf("%s beats %s", cardP1.Category, cardP2.Category),
		}
	}
	return RoundResult{
		Winner: WinnerP2,
		CardP1: cardP1,
		CardP2: cardP2,
		Reason: fmt.Sprintf("%s beats %s", cardP2.Category, cardP1.Category),
	}
}
