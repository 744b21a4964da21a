package session

import (
	"github.com/lox/pokercoach/internal/classify"
	"github.com/lox/pokercoach/internal/deck"
)

// HandState is the complete description of one tracked hand. Board
// slots beyond the current street's required count are always empty;
// all mutation goes through Session transition operations.
type HandState struct {
	Seat      Seat                  `json:"seat"`
	Hole      [2]deck.Card          `json:"hole"`
	Street    Street                `json:"street"`
	Facing    FacingAction          `json:"facing"`
	FacingBet float64               `json:"facing_bet"`
	Limpers   int                   `json:"limpers"`
	Board     [5]deck.Card          `json:"board"`
	Pot       float64               `json:"pot"`
	Texture   classify.BoardTexture `json:"board_texture,omitempty"`
	Strength  classify.HandStrength `json:"hand_strength,omitempty"`
	Villain   VillainType           `json:"villain_type"`
	Aggressor bool                  `json:"aggressor"`
}

// RevealedBoard returns the board cards the current street has revealed
func (h *HandState) RevealedBoard() []deck.Card {
	n := h.Street.BoardCards()
	cards := make([]deck.Card, 0, n)
	for _, c := range h.Board[:n] {
		if !c.IsZero() {
			cards = append(cards, c)
		}
	}
	return cards
}

// BluffContext is a paired bet-vs-check recommendation with
// expected-value figures, offered as a user choice rather than a single
// directive.
type BluffContext struct {
	EVBet        float64 `json:"ev_bet"`
	EVCheck      float64 `json:"ev_check"`
	FoldPct      float64 `json:"estimated_fold_pct"`
	BreakEvenPct float64 `json:"break_even_pct"`
	Recommended  string  `json:"recommended_side"` // "bet" or "check"
}

// DecisionResult is the recommendation engine's reply for one request.
// Alternative holds the rejected option of a bluff choice and is
// retained only while the user is choosing between the two.
type DecisionResult struct {
	Action      string          `json:"action"`
	Amount      float64         `json:"amount,omitempty"`
	Display     string          `json:"display"`
	Explanation string          `json:"explanation,omitempty"`
	Calculation string          `json:"calculation,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"`
	Bluff       *BluffContext   `json:"bluff,omitempty"`
	Alternative *DecisionResult `json:"alternative,omitempty"`
}

// key is the idempotency fingerprint used to drop redelivered replies
func (d *DecisionResult) key() string {
	if d == nil {
		return ""
	}
	return d.Display + "|" + d.Action
}

// Request is the decision request a session emits when entry completes.
// Texture and strength carry the user-entered labels when present,
// otherwise the classifier's values.
type Request struct {
	TableID   int                   `json:"table_id"`
	Seat      Seat                  `json:"seat"`
	Hole      [2]deck.Card          `json:"hole"`
	Street    Street                `json:"street"`
	Facing    FacingAction          `json:"facing"`
	FacingBet float64               `json:"facing_bet"`
	Limpers   int                   `json:"limpers"`
	Board     string                `json:"board"`
	Pot       float64               `json:"pot"`
	Texture   classify.BoardTexture `json:"board_texture,omitempty"`
	Strength  classify.HandStrength `json:"hand_strength,omitempty"`
	Villain   VillainType           `json:"villain_type"`
	Aggressor bool                  `json:"aggressor"`
}

// BluffRecord is the bluff accounting attached to a completion when the
// user was offered a bet-vs-check choice.
type BluffRecord struct {
	Recommended  string  `json:"recommended_side"`
	Chosen       string  `json:"chosen_side"`
	FoldPct      float64 `json:"estimated_fold_pct"`
	BreakEvenPct float64 `json:"break_even_pct"`
	Realized     string  `json:"realized"` // outcome category, e.g. "won"
}

// Completion is the hand-completion event emitted when an outcome is
// recorded.
type Completion struct {
	TableID     int          `json:"table_id"`
	Outcome     Outcome      `json:"-"`
	OutcomeName string       `json:"outcome"`
	ActionTaken string       `json:"action_taken"`
	State       HandState    `json:"hand_context"`
	Bluff       *BluffRecord `json:"bluff,omitempty"`
}

// Emitter receives the events a session produces. The engine client is
// the production implementation; tests supply their own.
type Emitter interface {
	DecisionRequested(req Request)
	HandCompleted(c Completion)
}

// streetFrame remembers the facing context replaced when entry continues
// onto a new street, so that backing across the street boundary can
// restore it exactly.
type streetFrame struct {
	Facing    FacingAction          `json:"facing"`
	FacingBet float64               `json:"facing_bet"`
	Aggressor bool                  `json:"aggressor"`
	Texture   classify.BoardTexture `json:"board_texture,omitempty"`
	Strength  classify.HandStrength `json:"hand_strength,omitempty"`
}

// Snapshot is the serializable form of a session, used both for the
// host's crash-safe resume and for coordinator restores. Unknown enum
// strings decode to their defaults.
type Snapshot struct {
	ID          int             `json:"table_id"`
	State       HandState       `json:"state"`
	Step        Step            `json:"step"`
	BoardIndex  int             `json:"board_entry_index"`
	PendingRank deck.Rank       `json:"pending_rank,omitempty"`
	Decision    *DecisionResult `json:"decision,omitempty"`
	LastKey     string          `json:"last_decision_key,omitempty"`
	Awaiting    bool            `json:"awaiting_decision,omitempty"`
	Branched    bool            `json:"branched,omitempty"`
	PrevFacing  FacingAction    `json:"prev_facing,omitempty"`
	PrevBet     float64         `json:"prev_facing_bet,omitempty"`
	PrevAggro   bool            `json:"prev_aggressor,omitempty"`
	BluffChosen string          `json:"bluff_chosen,omitempty"`
	Streets     []streetFrame   `json:"street_frames,omitempty"`
}
