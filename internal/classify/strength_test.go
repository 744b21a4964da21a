package classify

import (
	"testing"

	"github.com/lox/pokercoach/internal/deck"
)

func TestStrength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hole     string
		board    string
		expected HandStrength
	}{
		// Monsters
		{"quads", "AsAh", "AcAd7h", StrengthMonster},
		{"full house via trips", "Ks7d", "Kc7h7s", StrengthMonster},
		{"flush", "AhKh", "2h9h5h", StrengthMonster},
		{"straight", "6s7d", "8h9cTd", StrengthMonster},
		{"wheel straight", "Ad2c", "3h4s5d", StrengthMonster},
		{"set", "8s8h", "8cKd2s", StrengthMonster},

		// Trips with one hole card rank with two-pair strength
		{"trips on paired board", "Ad8h", "8c8dKs", StrengthTwoPair},

		// Two pair shapes
		{"both hole cards paired", "Kd7c", "Ks7h2d", StrengthTwoPair},
		{"pocket pair plus board pair", "9s9h", "KdKh2c", StrengthTwoPair},
		{"matched hole plus board pair", "Ad2c", "Ah5s5d", StrengthTwoPair},

		// One pair ladder
		{"overpair", "JsJh", "9c5d2h", StrengthOverpair},
		{"top pair top kicker", "KdAh", "Kc9s4d", StrengthTPTK},
		{"top pair weak kicker", "KdTh", "Kc9s4d", StrengthTopPair},
		{"middle pair", "9dAh", "Kc9s4d", StrengthMiddlePair},
		{"bottom pair", "4sAh", "Kc9s4d", StrengthBottomPair},
		{"pocket pair between board ranks", "7s7h", "Kc9s4d", StrengthMiddlePair},
		{"pocket pair under the board", "3s3h", "Kc9s4d", StrengthBottomPair},

		// Draws
		{"flush draw", "AhKh", "2h9h5c", StrengthFlushDraw},
		{"open ended", "9s8d", "7h6c2s", StrengthOESD},
		{"interior gutshot", "9s8d", "6h5c2s", StrengthGutshot},
		{"ace-high window is a gutshot", "AsKd", "QdJh4c", StrengthGutshot},
		{"ace-low window is a gutshot", "As4d", "2h3c9s", StrengthGutshot},
		{"combo draw", "AsKs", "QsJs4c", StrengthComboDraw},

		// Fallbacks
		{"overcards", "AhKd", "9c5s2h", StrengthOvercards},
		{"air", "7h6d", "AcKs2d", StrengthAir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hole := deck.DecodeAll(tt.hole)
			if len(hole) != 2 {
				t.Fatalf("bad hole cards %q", tt.hole)
			}
			board := deck.DecodeAll(tt.board)
			if got := Strength(hole[0], hole[1], board); got != tt.expected {
				t.Errorf("Strength(%s on %s) = %s, want %s", tt.hole, tt.board, got, tt.expected)
			}
		})
	}
}

func TestStrengthRequiresHoleAndBoard(t *testing.T) {
	t.Parallel()

	ah := deck.NewCard(deck.Ace, deck.Hearts)
	kd := deck.NewCard(deck.King, deck.Diamonds)
	board := deck.DecodeAll("9c5s2h")

	if got := Strength(deck.Card{}, kd, board); got != StrengthAir {
		t.Errorf("missing first hole card = %s, want air", got)
	}
	if got := Strength(ah, deck.Card{}, board); got != StrengthAir {
		t.Errorf("missing second hole card = %s, want air", got)
	}
	if got := Strength(ah, kd, nil); got != StrengthAir {
		t.Errorf("empty board = %s, want air", got)
	}
}

func TestStrengthBoardOnlyCombinationsDoNotElevate(t *testing.T) {
	t.Parallel()

	// The board's own pair plays for everyone and should not lift a
	// hand that owns none of it.
	hole := deck.DecodeAll("7h6d")
	board := deck.DecodeAll("AcAsKd")
	if got := Strength(hole[0], hole[1], board); got != StrengthAir {
		t.Errorf("unconnected hand on paired board = %s, want air", got)
	}
}
