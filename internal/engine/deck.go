// internal/engine/deck.go
package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lucasbarros/cardclash/internal/models"
)

// ErrInsufficientDeck indicates the card catalog is too small to deal two
// full hands. This is a catalog misconfiguration, not a caller error.
var ErrInsufficientDeck = errors.New("insufficient deck size")

// BuildDeck turns the active card definitions into a shuffled deck of logical
// cards. The rng is injected so tests can seed the shuffle.
func BuildDeck(defs []models.CardDefinition, rng *rand.Rand) []models.Card {
	deck := make([]models.Card, 0, len(defs))
	for _, def := range defs {
		if !def.Active {
			continue
		}
		deck = append(deck, models.Card{ID: def.ID, Category: def.Category, Power: def.Power})
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// DealTwoHands splits the first 2*handSize cards of a shuffled deck into two
// disjoint hands. The remainder of the deck is discarded for the match.
func DealTwoHands(deck []models.Card, handSize int) (handP1, handP2 []models.Card, err error) {
	if len(deck) <= handSize*2 {
		return nil, nil, fmt.Errorf("%w: deck has %d cards, need more than %d",
			ErrInsufficientDeck, len(deck), handSize*2)
	}
	return deck[:handSize], deck[handSize : handSize*2], nil
}
