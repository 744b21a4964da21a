package deck

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	NoSuit Suit = iota
	Spades
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Token returns the single-character wire form of a suit ("s", "h", "d", "c")
func (s Suit) Token() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return ""
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. The numeric value is the poker value,
// with aces high (14). Ace-low handling is done by the consumers that
// need it.
type Rank int

const (
	NoRank Rank = 0
	Two    Rank = 2
	Three  Rank = 3
	Four   Rank = 4
	Five   Rank = 5
	Six    Rank = 6
	Seven  Rank = 7
	Eight  Rank = 8
	Nine   Rank = 9
	Ten    Rank = 10
	Jack   Rank = 11
	Queen  Rank = 12
	King   Rank = 13
	Ace    Rank = 14
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two, Three, Four, Five, Six, Seven, Eight, Nine:
		return string(rune('0' + int(r)))
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. The zero value is "no card", used for
// unfilled hole-card and board slots.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsZero returns true for the "no card" value
func (c Card) IsZero() bool {
	return c.Rank == NoRank || c.Suit == NoSuit
}

// String returns the display representation of a card (e.g. "A♠")
func (c Card) String() string {
	if c.IsZero() {
		return "--"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// MarshalJSON encodes the card as its wire token, the empty string for
// an unfilled slot
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(c))
}

// UnmarshalJSON decodes a wire token. Malformed tokens yield the zero
// card rather than an error so that snapshot restores degrade to
// defaults instead of failing.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = Card{}
		return nil
	}
	*c, _ = Decode(s)
	return nil
}

// Encode serializes a card to its fixed two-character wire token
// (e.g. "As", "7d"). The zero card encodes to the empty token.
func Encode(c Card) string {
	if c.IsZero() {
		return ""
	}
	return c.Rank.String() + c.Suit.Token()
}

// Decode parses a two-character wire token back into a card. It is the
// exact inverse of Encode: malformed or empty input yields the zero card
// and ok=false.
func Decode(s string) (Card, bool) {
	if len(s) != 2 {
		return Card{}, false
	}

	var rank Rank
	switch s[0] {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		rank = Rank(s[0] - '0')
	case 'T', 't':
		rank = Ten
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	default:
		return Card{}, false
	}

	var suit Suit
	switch s[1] {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	default:
		return Card{}, false
	}

	return Card{Rank: rank, Suit: suit}, true
}

// EncodeAll concatenates the tokens of the given cards, skipping unfilled
// slots, producing a board string like "Kd7c2h".
func EncodeAll(cards []Card) string {
	var out string
	for _, c := range cards {
		out += Encode(c)
	}
	return out
}

// DecodeAll parses a concatenated board string back into cards. Parsing
// stops at the first malformed token.
func DecodeAll(s string) []Card {
	var cards []Card
	for i := 0; i+1 < len(s); i += 2 {
		c, ok := Decode(s[i : i+2])
		if !ok {
			break
		}
		cards = append(cards, c)
	}
	return cards
}

// InUse reports whether the (rank, suit) pair structurally equals any
// already-assigned hole or board card. Unfilled slots never match.
func InUse(rank Rank, suit Suit, hole1, hole2 Card, board []Card) bool {
	candidate := Card{Rank: rank, Suit: suit}
	if candidate.IsZero() {
		return false
	}
	if candidate == hole1 || candidate == hole2 {
		return true
	}
	for _, c := range board {
		if candidate == c {
			return true
		}
	}
	return false
}
