// internal/engine/deck_test.go
package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasbarros/cardclash/internal/models"
)

func catalogDefs(n int) []models.CardDefinition {
	categories := []string{"rock", "paper", "scissors"}
	defs := make([]models.CardDefinition, 0, n)
	for i := 0; i < n; i++ {
		defs = append(defs, models.CardDefinition{
			ID:       i + 1,
			Category: categories[i%3],
			Power:    i%6 + 1,
			Active:   true,
		})
	}
	return defs
}

func TestBuildDeckFiltersInactive(t *testing.T) {
	defs := catalogDefs(6)
	defs[2].Active = false
	defs[5].Active = false

	deck := BuildDeck(defs, rand.New(rand.NewSource(1)))
	require.Len(t, deck, 4)
	for _, c := range deck {
		assert.NotEqual(t, defs[2].ID, c.ID)
		assert.NotEqual(t, defs[5].ID, c.ID)
	}
}

func TestBuildDeckSeededShuffleIsReproducible(t *testing.T) {
	defs := catalogDefs(18)
	first := BuildDeck(defs, rand.New(rand.NewSource(42)))
	second := BuildDeck(defs, rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second)
}

func TestDealTwoHandsDisjoint(t *testing.T) {
	deck := BuildDeck(catalogDefs(18), rand.New(rand.NewSource(7)))

	h1, h2, err := DealTwoHands(deck, 5)
	require.NoError(t, err)
	require.Len(t, h1, 5)
	require.Len(t, h2, 5)

	seen := map[int]bool{}
	for _, c := range h1 {
		seen[c.ID] = true
	}
	for _, c := range h2 {
		assert.False(t, seen[c.ID], "card %d dealt to both hands", c.ID)
	}
}

func TestDealTwoHandsInsufficientDeck(t *testing.T) {
	deck := BuildDeck(catalogDefs(10), rand.New(rand.NewSource(7)))

	_, _, err := DealTwoHands(deck, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientDeck)

	// Ten cards is exactly hand_size*2 and still fails; eleven is the
	// smallest deck that deals.
	_, _, err = DealTwoHands(BuildDeck(catalogDefs(11), rand.New(rand.NewSource(7))), 5)
	require.NoError(t, err)
}
