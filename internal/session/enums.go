package session

import "encoding/json"

// Street represents the current betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

// BoardCards returns how many board cards the street requires
func (s Street) BoardCards() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	default:
		return 0
	}
}

// Next returns the following street. River has no successor.
func (s Street) Next() (Street, bool) {
	if s >= River {
		return River, false
	}
	return s + 1, true
}

// String returns the string representation of a street
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// StreetFromString converts a string to a Street, defaulting to preflop
func StreetFromString(s string) Street {
	switch s {
	case "flop":
		return Flop
	case "turn":
		return Turn
	case "river":
		return River
	default:
		return Preflop
	}
}

// MarshalJSON encodes the street as its string form
func (s Street) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a street string, falling back to preflop on
// anything unrecognised
func (s *Street) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = Preflop
		return nil
	}
	*s = StreetFromString(str)
	return nil
}

// Seat represents the tracked player's seat at a six-handed table
type Seat int

const (
	SeatUnset Seat = iota
	SeatUTG
	SeatHJ
	SeatCO
	SeatBTN
	SeatSB
	SeatBB
)

// String returns the string representation of a seat
func (s Seat) String() string {
	switch s {
	case SeatUTG:
		return "UTG"
	case SeatHJ:
		return "HJ"
	case SeatCO:
		return "CO"
	case SeatBTN:
		return "BTN"
	case SeatSB:
		return "SB"
	case SeatBB:
		return "BB"
	default:
		return ""
	}
}

// SeatFromString converts a string to a Seat, defaulting to unset
func SeatFromString(s string) Seat {
	switch s {
	case "UTG":
		return SeatUTG
	case "HJ":
		return SeatHJ
	case "CO":
		return SeatCO
	case "BTN":
		return SeatBTN
	case "SB":
		return SeatSB
	case "BB":
		return SeatBB
	default:
		return SeatUnset
	}
}

// MarshalJSON encodes the seat as its string form
func (s Seat) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a seat string, falling back to unset
func (s *Seat) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = SeatUnset
		return nil
	}
	*s = SeatFromString(str)
	return nil
}

// FacingAction describes the action the tracked player is facing
type FacingAction int

const (
	FacingNone FacingAction = iota
	FacingLimp
	FacingRaise
	Facing3Bet
	Facing4Bet
	FacingBet
	FacingCheckRaise
)

// String returns the string representation of a facing action
func (f FacingAction) String() string {
	switch f {
	case FacingNone:
		return "none"
	case FacingLimp:
		return "limp"
	case FacingRaise:
		return "raise"
	case Facing3Bet:
		return "3bet"
	case Facing4Bet:
		return "4bet"
	case FacingBet:
		return "bet"
	case FacingCheckRaise:
		return "check_raise"
	default:
		return "none"
	}
}

// FacingActionFromString converts a string to a FacingAction, defaulting
// to none
func FacingActionFromString(s string) FacingAction {
	switch s {
	case "limp":
		return FacingLimp
	case "raise":
		return FacingRaise
	case "3bet":
		return Facing3Bet
	case "4bet":
		return Facing4Bet
	case "bet":
		return FacingBet
	case "check_raise":
		return FacingCheckRaise
	default:
		return FacingNone
	}
}

// NeedsAmount reports whether the facing action carries a bet size
func (f FacingAction) NeedsAmount() bool {
	switch f {
	case FacingRaise, Facing3Bet, Facing4Bet, FacingBet, FacingCheckRaise:
		return true
	default:
		return false
	}
}

// Escalate returns the facing action after the villain raises again.
// Preflop the ladder runs none/limp -> raise -> 3bet -> 4bet; postflop a
// raise over our bet is always a check-raise.
func (f FacingAction) Escalate(street Street) FacingAction {
	if street != Preflop {
		return FacingCheckRaise
	}
	switch f {
	case FacingNone, FacingLimp:
		return FacingRaise
	case FacingRaise:
		return Facing3Bet
	default:
		return Facing4Bet
	}
}

// MarshalJSON encodes the facing action as its string form
func (f FacingAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a facing action string, falling back to none
func (f *FacingAction) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*f = FacingNone
		return nil
	}
	*f = FacingActionFromString(str)
	return nil
}

// VillainType is a coarse skill/tendency tag for the opponent
type VillainType int

const (
	VillainUnknown VillainType = iota
	VillainFish
	VillainReg
)

// String returns the string representation of a villain type
func (v VillainType) String() string {
	switch v {
	case VillainFish:
		return "fish"
	case VillainReg:
		return "reg"
	default:
		return "unknown"
	}
}

// VillainTypeFromString converts a string to a VillainType, defaulting
// to unknown
func VillainTypeFromString(s string) VillainType {
	switch s {
	case "fish":
		return VillainFish
	case "reg":
		return VillainReg
	default:
		return VillainUnknown
	}
}

// MarshalJSON encodes the villain type as its string form
func (v VillainType) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a villain type string, falling back to unknown
func (v *VillainType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*v = VillainUnknown
		return nil
	}
	*v = VillainTypeFromString(str)
	return nil
}

// Outcome is the recorded result of a completed hand
type Outcome int

const (
	OutcomeWon Outcome = iota
	OutcomeLost
	OutcomeFolded
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "folded"
	}
}

// OutcomeFromString converts a string to an Outcome, defaulting to folded
func OutcomeFromString(s string) Outcome {
	switch s {
	case "won":
		return OutcomeWon
	case "lost":
		return OutcomeLost
	default:
		return OutcomeFolded
	}
}

// Step is a position in the guided-entry sequence. Exactly one step is
// current per session.
type Step int

const (
	StepPosition Step = iota
	StepCard1Rank
	StepCard1Suit
	StepCard2Rank
	StepCard2Suit
	StepAction
	StepAmount
	StepLimperCount
	StepBoardRank
	StepBoardSuit
	StepPotSize
	StepBoardTexture
	StepHandStrength
	StepVillainType
	StepReady
	StepShowingDecision
	StepOutcomeSelect
)

// String returns the string representation of a step
func (s Step) String() string {
	switch s {
	case StepPosition:
		return "position"
	case StepCard1Rank:
		return "card1_rank"
	case StepCard1Suit:
		return "card1_suit"
	case StepCard2Rank:
		return "card2_rank"
	case StepCard2Suit:
		return "card2_suit"
	case StepAction:
		return "action"
	case StepAmount:
		return "amount"
	case StepLimperCount:
		return "limper_count"
	case StepBoardRank:
		return "board_rank"
	case StepBoardSuit:
		return "board_suit"
	case StepPotSize:
		return "pot_size"
	case StepBoardTexture:
		return "board_texture"
	case StepHandStrength:
		return "hand_strength"
	case StepVillainType:
		return "villain_type"
	case StepReady:
		return "ready"
	case StepShowingDecision:
		return "showing_decision"
	case StepOutcomeSelect:
		return "outcome_select"
	default:
		return "position"
	}
}

// StepFromString converts a string to a Step, defaulting to position
func StepFromString(s string) Step {
	for step := StepPosition; step <= StepOutcomeSelect; step++ {
		if step.String() == s {
			return step
		}
	}
	return StepPosition
}

// MarshalJSON encodes the step as its string form
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a step string, falling back to position
func (s *Step) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = StepPosition
		return nil
	}
	*s = StepFromString(str)
	return nil
}
