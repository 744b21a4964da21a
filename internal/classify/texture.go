// Package classify derives the two descriptive labels the decision flow
// attaches to a hand: board texture and hand strength. Both classifiers
// are pure functions over card values and evaluate their tiers in strict
// priority order, so the first matching tier wins.
package classify

import (
	"sort"

	"github.com/lox/pokercoach/internal/deck"
)

// BoardTexture is a coarse descriptor of how interactive a board is for
// drawing hands.
type BoardTexture string

const (
	TextureDry     BoardTexture = "dry"
	TextureSemiWet BoardTexture = "semi_wet"
	TextureWet     BoardTexture = "wet"
	TexturePaired  BoardTexture = "paired"
)

// boardSignals holds the intermediate measurements the texture rules are
// phrased in terms of.
type boardSignals struct {
	maxSameSuit       int
	uniqueRanks       []int // sorted ascending, ace high (14)
	span              int
	adjacentCount     int // unique-rank pairs at gap exactly 1
	oneGapCount       int // unique-rank pairs at gap exactly 2, wheel-corrected
	maxConsecutiveRun int
	flushDrawPossible bool
}

// Texture classifies revealed board cards into a texture label. Fewer
// than three cards is always dry. A repeated rank dominates everything
// else; monotone and connected boards rank above flush-draw and one-gap
// connectivity, which is the weakest signal.
func Texture(board []deck.Card) BoardTexture {
	cards := filled(board)
	if len(cards) < 3 {
		return TextureDry
	}

	rankCounts := make(map[deck.Rank]int)
	for _, c := range cards {
		rankCounts[c.Rank]++
	}
	for _, n := range rankCounts {
		if n >= 2 {
			return TexturePaired
		}
	}

	sig := measureBoard(cards)

	switch {
	case sig.maxSameSuit >= 3:
		return TextureWet
	case sig.maxConsecutiveRun >= 3:
		return TextureWet
	case sig.flushDrawPossible && sig.adjacentCount >= 1 && sig.span <= 4:
		return TextureWet
	case sig.adjacentCount >= 2 && sig.span <= 5:
		return TextureWet
	}

	switch {
	case sig.flushDrawPossible:
		return TextureSemiWet
	case sig.adjacentCount >= 1 && sig.span <= 4:
		return TextureSemiWet
	case meaningfulOneGap(sig.uniqueRanks):
		return TextureSemiWet
	}

	return TextureDry
}

func measureBoard(cards []deck.Card) boardSignals {
	var sig boardSignals

	suitCounts := make(map[deck.Suit]int)
	rankSet := make(map[int]bool)
	for _, c := range cards {
		suitCounts[c.Suit]++
		rankSet[int(c.Rank)] = true
	}
	for _, n := range suitCounts {
		if n > sig.maxSameSuit {
			sig.maxSameSuit = n
		}
	}

	for r := range rankSet {
		sig.uniqueRanks = append(sig.uniqueRanks, r)
	}
	sort.Ints(sig.uniqueRanks)

	ranks := sig.uniqueRanks
	sig.span = ranks[len(ranks)-1] - ranks[0]

	for i := 0; i < len(ranks); i++ {
		for j := i + 1; j < len(ranks); j++ {
			switch ranks[j] - ranks[i] {
			case 1:
				sig.adjacentCount++
			case 2:
				sig.oneGapCount++
			}
		}
	}

	// Wheel correction: an ace with two low cards plays as one-gap
	// connectivity without the ace counting as adjacent-low.
	if rankSet[int(deck.Ace)] {
		low := 0
		for r := 2; r <= 5; r++ {
			if rankSet[r] {
				low++
			}
		}
		if low >= 2 {
			sig.oneGapCount++
		}
	}

	run := 1
	sig.maxConsecutiveRun = 1
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > sig.maxConsecutiveRun {
			sig.maxConsecutiveRun = run
		}
	}

	// A five-card board needs three of a suit before a flush draw is
	// live; three or four cards only need two.
	if len(cards) >= 5 {
		sig.flushDrawPossible = sig.maxSameSuit >= 3
	} else {
		sig.flushDrawPossible = sig.maxSameSuit >= 2
	}

	return sig
}

// meaningfulOneGap reports whether some rank in [5, K] has a one-gap
// partner at or above 5. Gaps anchored entirely in the wheel zone are not
// considered connective on their own.
func meaningfulOneGap(uniqueRanks []int) bool {
	present := make(map[int]bool, len(uniqueRanks))
	for _, r := range uniqueRanks {
		present[r] = true
	}
	for _, r := range uniqueRanks {
		if r < 5 || r > 13 {
			continue
		}
		if (present[r-2] && r-2 >= 5) || (present[r+2] && r+2 >= 5) {
			return true
		}
	}
	return false
}

// filled drops unassigned card slots.
func filled(cards []deck.Card) []deck.Card {
	out := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}
