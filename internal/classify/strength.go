package classify

import "github.com/lox/pokercoach/internal/deck"

// HandStrength is the postflop strength label for the tracked player's
// hand. Tiers are ordered strongest first; a tier only qualifies when a
// hole card participates in it, so combinations owned entirely by the
// board never elevate the label.
type HandStrength string

const (
	StrengthMonster    HandStrength = "monster"
	StrengthTwoPair    HandStrength = "two_pair"
	StrengthOverpair   HandStrength = "overpair"
	StrengthTPTK       HandStrength = "tptk"
	StrengthTopPair    HandStrength = "top_pair"
	StrengthMiddlePair HandStrength = "middle_pair"
	StrengthBottomPair HandStrength = "bottom_pair"
	StrengthComboDraw  HandStrength = "combo_draw"
	StrengthFlushDraw  HandStrength = "flush_draw"
	StrengthOESD       HandStrength = "oesd"
	StrengthGutshot    HandStrength = "gutshot"
	StrengthOvercards  HandStrength = "overcards"
	StrengthAir        HandStrength = "air"
)

// Strength classifies two hole cards against the revealed board. A
// missing hole card or an empty board yields air; preflop strength is
// the recommendation engine's job, not this classifier's.
func Strength(hole1, hole2 deck.Card, board []deck.Card) HandStrength {
	if hole1.IsZero() || hole2.IsZero() {
		return StrengthAir
	}
	boardCards := filled(board)
	if len(boardCards) == 0 {
		return StrengthAir
	}

	all := append([]deck.Card{hole1, hole2}, boardCards...)
	counts := make(map[deck.Rank]int)
	suitCounts := make(map[deck.Suit]int)
	for _, c := range all {
		counts[c.Rank]++
		suitCounts[c.Suit]++
	}
	boardCounts := make(map[deck.Rank]int)
	boardMax, boardMin := deck.NoRank, deck.Ace+1
	for _, c := range boardCards {
		boardCounts[c.Rank]++
		if c.Rank > boardMax {
			boardMax = c.Rank
		}
		if c.Rank < boardMin {
			boardMin = c.Rank
		}
	}

	h1, h2 := hole1.Rank, hole2.Rank
	pocket := h1 == h2
	holeRank := func(r deck.Rank) bool { return r == h1 || r == h2 }
	holeSuit := func(s deck.Suit) bool { return s == hole1.Suit || s == hole2.Suit }

	// Four of a kind
	for r, n := range counts {
		if n >= 4 && holeRank(r) {
			return StrengthMonster
		}
	}

	// Full house: a triple plus a distinct pair, hole rank in either
	for t, tn := range counts {
		if tn < 3 {
			continue
		}
		for p, pn := range counts {
			if p == t || pn < 2 {
				continue
			}
			if holeRank(t) || holeRank(p) {
				return StrengthMonster
			}
		}
	}

	// Flush
	for s, n := range suitCounts {
		if n >= 5 && holeSuit(s) {
			return StrengthMonster
		}
	}

	// Straight: five consecutive unique ranks containing a hole rank.
	// The ace plays both high and low.
	present := make(map[int]bool)
	for r := range counts {
		present[int(r)] = true
	}
	if present[int(deck.Ace)] {
		present[1] = true
	}
	holeVal := func(v int) bool {
		if holeRank(deck.Rank(v)) {
			return true
		}
		return v == 1 && holeRank(deck.Ace)
	}
	for low := 1; low <= 10; low++ {
		complete := true
		holeIn := false
		for v := low; v <= low+4; v++ {
			if !present[v] {
				complete = false
				break
			}
			if holeVal(v) {
				holeIn = true
			}
		}
		if complete && holeIn {
			return StrengthMonster
		}
	}

	// Trips. A set (pocket pair matching the board) is a monster; one
	// hole card on a board pair is bucketed with two-pair strength.
	for r, n := range counts {
		if n >= 3 && holeRank(r) {
			if pocket && r == h1 {
				return StrengthMonster
			}
			return StrengthTwoPair
		}
	}

	// Two pair in its several shapes
	boardPairBesides := func(x deck.Rank) bool {
		for r, n := range boardCounts {
			if r != x && n >= 2 {
				return true
			}
		}
		return false
	}
	if !pocket && boardCounts[h1] >= 1 && boardCounts[h2] >= 1 {
		return StrengthTwoPair
	}
	if pocket && boardPairBesides(h1) {
		return StrengthTwoPair
	}
	if !pocket {
		for _, r := range []deck.Rank{h1, h2} {
			if boardCounts[r] >= 1 && boardPairBesides(r) {
				return StrengthTwoPair
			}
		}
	}

	// One pair ladder
	if pairRank, kicker, ok := singlePair(h1, h2, pocket, boardCounts); ok {
		switch {
		case pocket && pairRank > boardMax:
			return StrengthOverpair
		case boardCounts[pairRank] >= 1 && pairRank == boardMax:
			if kicker == deck.King || kicker == deck.Ace {
				return StrengthTPTK
			}
			return StrengthTopPair
		case len(boardCounts) >= 2 && pairRank > boardMin && pairRank < boardMax:
			return StrengthMiddlePair
		default:
			return StrengthBottomPair
		}
	}

	// Draws
	flushDraw := false
	for s, n := range suitCounts {
		if n == 4 && holeSuit(s) {
			flushDraw = true
		}
	}
	hasOESD, hasGutshot := straightDraws(present, holeVal)

	switch {
	case flushDraw && (hasOESD || hasGutshot):
		return StrengthComboDraw
	case flushDraw:
		return StrengthFlushDraw
	case hasOESD:
		return StrengthOESD
	case hasGutshot:
		return StrengthGutshot
	}

	if h1 > boardMax && h2 > boardMax {
		return StrengthOvercards
	}

	return StrengthAir
}

// singlePair reports the hand's owned pair, if any: a pocket pair, or a
// hole card matched by the board. The kicker is the other hole card.
func singlePair(h1, h2 deck.Rank, pocket bool, boardCounts map[deck.Rank]int) (pairRank, kicker deck.Rank, ok bool) {
	if pocket {
		return h1, h1, true
	}
	if boardCounts[h1] >= 1 {
		return h1, h2, true
	}
	if boardCounts[h2] >= 1 {
		return h2, h1, true
	}
	return 0, 0, false
}

// straightDraws scans all ten five-rank windows for four-of-five
// membership that includes a hole rank. A missing interior rank is a
// gutshot; a missing edge is open-ended unless the window's other edge
// is pinned at the ace-high top or ace-low bottom, where only one card
// can complete it.
func straightDraws(present map[int]bool, holeVal func(int) bool) (hasOESD, hasGutshot bool) {
	for low := 1; low <= 10; low++ {
		missing := 0
		missingVal := 0
		holeIn := false
		for v := low; v <= low+4; v++ {
			if !present[v] {
				missing++
				missingVal = v
			} else if holeVal(v) {
				holeIn = true
			}
		}
		if missing != 1 || !holeIn {
			continue
		}
		if missingVal == low || missingVal == low+4 {
			openEnded := true
			if missingVal == low && low+4 == 14 {
				openEnded = false
			}
			if missingVal == low+4 && low == 1 {
				openEnded = false
			}
			if openEnded {
				hasOESD = true
			} else {
				hasGutshot = true
			}
		} else {
			hasGutshot = true
		}
	}
	return hasOESD, hasGutshot
}
