// Package session implements the guided-entry state machine for a single
// tracked hand. One Session owns one HandState and one current Step;
// every mutation goes through Apply so each forward transition has a
// testable inverse.
package session

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/pokercoach/internal/classify"
	"github.com/lox/pokercoach/internal/deck"
)

var (
	// ErrDuplicateCard is returned when a card entry matches one already
	// placed; the flow returns to rank selection without mutating state.
	ErrDuplicateCard = errors.New("card already in use")

	// ErrInvalidNumber is returned for empty, non-numeric or non-positive
	// numeric entry; the flow stays on the same step.
	ErrInvalidNumber = errors.New("invalid numeric entry")

	// ErrInvalidInput is returned when an input kind does not apply to
	// the current step.
	ErrInvalidInput = errors.New("input not valid for current step")
)

// InputKind discriminates guided-entry inputs
type InputKind int

const (
	InputSeat InputKind = iota
	InputRank
	InputSuit
	InputAction
	InputNumber
	InputTexture
	InputStrength
	InputVillain
	InputSkip
	InputBack
	InputTheyRaised
	InputTheyBet
	InputNextStreet
	InputChooseBet
	InputChooseCheck
	InputRecordOutcome
	InputOutcome
)

// Input is one discrete guided-entry event. Only the field matching
// Kind is meaningful.
type Input struct {
	Kind     InputKind
	Seat     Seat
	Rank     deck.Rank
	Suit     deck.Suit
	Action   FacingAction
	Number   string
	Texture  classify.BoardTexture
	Strength classify.HandStrength
	Villain  VillainType
	Outcome  Outcome
}

// Session is the input-flow state machine for one tracked table
type Session struct {
	id      int
	emitter Emitter
	logger  *log.Logger

	state       HandState
	step        Step
	boardIndex  int       // count of filled board slots
	pendingRank deck.Rank // rank awaiting its suit

	decision *DecisionResult
	lastKey  string // idempotency fingerprint of the last applied reply
	awaiting bool   // a decision request is outstanding

	// branch bookkeeping for the raised/bet-again paths
	branched   bool
	prevFacing FacingAction
	prevBet    float64
	prevAggro  bool

	bluffChosen string
	streets     []streetFrame
}

// New creates a fresh session for the given table identity
func New(id int, emitter Emitter, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		id:      id,
		emitter: emitter,
		logger:  logger.WithPrefix("session").With("table", id),
		step:    StepPosition,
	}
}

// ID returns the table identity this session's data belongs to
func (s *Session) ID() int { return s.id }

// Step returns the current guided-entry step
func (s *Session) Step() Step { return s.step }

// State returns a copy of the hand state
func (s *Session) State() HandState { return s.state }

// Decision returns the currently displayed decision, if any
func (s *Session) Decision() *DecisionResult { return s.decision }

// BoardIndex returns the count of filled board slots
func (s *Session) BoardIndex() int { return s.boardIndex }

// PendingRank returns the rank awaiting suit selection, if any
func (s *Session) PendingRank() deck.Rank { return s.pendingRank }

// HasSeat reports whether a seat has been selected; a session without a
// seat holds no meaningful entry and may be discarded without
// confirmation.
func (s *Session) HasSeat() bool { return s.state.Seat != SeatUnset }

// Reset returns the session to its initial state, keeping its identity
func (s *Session) Reset() {
	s.state = HandState{}
	s.step = StepPosition
	s.boardIndex = 0
	s.pendingRank = deck.NoRank
	s.decision = nil
	s.lastKey = ""
	s.awaiting = false
	s.branched = false
	s.prevFacing = FacingNone
	s.prevBet = 0
	s.prevAggro = false
	s.bluffChosen = ""
	s.streets = nil
}

// Apply runs one transition of the guided-entry flow. Recoverable entry
// problems (duplicate card, bad number) return an error and leave the
// session on a safe step; nothing here is fatal.
func (s *Session) Apply(in Input) error {
	if in.Kind == InputBack {
		return s.goBack()
	}

	switch s.step {
	case StepPosition:
		if in.Kind != InputSeat || in.Seat == SeatUnset {
			return ErrInvalidInput
		}
		s.state.Seat = in.Seat
		s.step = StepCard1Rank

	case StepCard1Rank, StepCard2Rank, StepBoardRank:
		if in.Kind != InputRank || in.Rank == deck.NoRank {
			return ErrInvalidInput
		}
		s.pendingRank = in.Rank
		s.step++ // each rank step is immediately followed by its suit step

	case StepCard1Suit:
		card, err := s.completeCard(in, StepCard1Rank)
		if err != nil {
			return err
		}
		s.state.Hole[0] = card
		s.step = StepCard2Rank

	case StepCard2Suit:
		card, err := s.completeCard(in, StepCard2Rank)
		if err != nil {
			return err
		}
		s.state.Hole[1] = card
		s.step = StepAction

	case StepBoardSuit:
		card, err := s.completeCard(in, StepBoardRank)
		if err != nil {
			return err
		}
		s.state.Board[s.boardIndex] = card
		s.boardIndex++
		if s.boardIndex < s.state.Street.BoardCards() {
			s.step = StepBoardRank
		} else {
			s.step = StepPotSize
		}

	case StepAction:
		if in.Kind != InputAction {
			return ErrInvalidInput
		}
		s.state.Facing = in.Action
		s.state.Aggressor = aggressorFor(in.Action)
		switch {
		case in.Action == FacingLimp:
			s.step = StepLimperCount
		case in.Action.NeedsAmount():
			s.step = StepAmount
		default:
			s.step = StepVillainType
		}

	case StepAmount:
		amount, err := parseAmount(in)
		if err != nil {
			return err
		}
		s.state.FacingBet = amount
		if s.branched {
			s.enterReady()
		} else {
			s.step = StepVillainType
		}

	case StepLimperCount:
		n, err := parseCount(in)
		if err != nil {
			return err
		}
		s.state.Limpers = n
		s.step = StepVillainType

	case StepPotSize:
		amount, err := parseAmount(in)
		if err != nil {
			return err
		}
		s.state.Pot = amount
		s.step = StepBoardTexture

	case StepBoardTexture:
		switch in.Kind {
		case InputTexture:
			s.state.Texture = in.Texture
		case InputSkip:
			// left for the classifier
		default:
			return ErrInvalidInput
		}
		s.step = StepHandStrength

	case StepHandStrength:
		switch in.Kind {
		case InputStrength:
			s.state.Strength = in.Strength
		case InputSkip:
		default:
			return ErrInvalidInput
		}
		s.step = StepVillainType

	case StepVillainType:
		switch in.Kind {
		case InputVillain:
			s.state.Villain = in.Villain
		case InputSkip:
		default:
			return ErrInvalidInput
		}
		s.enterReady()

	case StepShowingDecision:
		return s.applyDecisionInput(in)

	case StepOutcomeSelect:
		if in.Kind != InputOutcome {
			return ErrInvalidInput
		}
		s.complete(in.Outcome)

	default:
		return ErrInvalidInput
	}

	return nil
}

// completeCard pairs the pending rank with a suit, vetoing duplicates by
// discarding the pending rank and returning to the given rank step.
func (s *Session) completeCard(in Input, rankStep Step) (deck.Card, error) {
	if in.Kind != InputSuit || in.Suit == deck.NoSuit {
		return deck.Card{}, ErrInvalidInput
	}
	if deck.InUse(s.pendingRank, in.Suit, s.state.Hole[0], s.state.Hole[1], s.state.Board[:]) {
		s.pendingRank = deck.NoRank
		s.step = rankStep
		return deck.Card{}, ErrDuplicateCard
	}
	card := deck.NewCard(s.pendingRank, in.Suit)
	s.pendingRank = deck.NoRank
	return card, nil
}

// applyDecisionInput handles the post-decision branches
func (s *Session) applyDecisionInput(in Input) error {
	switch in.Kind {
	case InputTheyRaised:
		s.pushBranch()
		s.state.Facing = s.state.Facing.Escalate(s.state.Street)
		s.state.Aggressor = aggressorFor(s.state.Facing)
		s.step = StepAmount

	case InputTheyBet:
		if s.state.Street == Preflop || s.state.Facing != FacingNone {
			return ErrInvalidInput
		}
		s.pushBranch()
		s.state.Facing = FacingBet
		s.state.Aggressor = false
		s.step = StepAmount

	case InputNextStreet:
		next, ok := s.state.Street.Next()
		if !ok {
			return ErrInvalidInput
		}
		s.streets = append(s.streets, streetFrame{
			Facing:    s.state.Facing,
			FacingBet: s.state.FacingBet,
			Aggressor: s.state.Aggressor,
			Texture:   s.state.Texture,
			Strength:  s.state.Strength,
		})
		// An unopposed bet or raise carries initiative onto the new street
		if s.state.Facing == FacingNone {
			s.state.Aggressor = true
		}
		s.state.Street = next
		s.state.Facing = FacingNone
		s.state.FacingBet = 0
		s.state.Texture = ""
		s.state.Strength = ""
		s.step = StepBoardRank

	case InputChooseBet, InputChooseCheck:
		return s.chooseBluffSide(in.Kind)

	case InputRecordOutcome:
		s.step = StepOutcomeSelect

	case InputOutcome:
		if in.Outcome != OutcomeFolded {
			return ErrInvalidInput
		}
		s.complete(OutcomeFolded)

	default:
		return ErrInvalidInput
	}
	return nil
}

// chooseBluffSide collapses a bet-vs-check choice, keeping the chosen
// side as the displayed decision and recording which side was taken.
func (s *Session) chooseBluffSide(kind InputKind) error {
	d := s.decision
	if d == nil || d.Bluff == nil || d.Alternative == nil {
		return ErrInvalidInput
	}
	side := "bet"
	if kind == InputChooseCheck {
		side = "check"
	}
	s.bluffChosen = side
	if side != d.Bluff.Recommended {
		alt := d.Alternative
		alt.Bluff = d.Bluff
		s.decision = alt
	}
	s.decision.Alternative = nil
	s.step = StepOutcomeSelect
	return nil
}

// pushBranch saves the pre-branch facing context so goBack can restore
// it and return directly to the decision.
func (s *Session) pushBranch() {
	s.branched = true
	s.prevFacing = s.state.Facing
	s.prevBet = s.state.FacingBet
	s.prevAggro = s.state.Aggressor
}

// enterReady runs the transient submission step: derive any labels the
// user left to the classifiers, emit the decision request, and advance
// to showing the decision. It is never a resting state.
func (s *Session) enterReady() {
	s.step = StepReady
	req := s.buildRequest()
	s.awaiting = true
	s.branched = false
	s.step = StepShowingDecision
	s.logger.Debug("decision requested", "street", s.state.Street, "facing", s.state.Facing)
	if s.emitter != nil {
		s.emitter.DecisionRequested(req)
	}
}

func (s *Session) buildRequest() Request {
	board := s.state.RevealedBoard()
	texture := s.state.Texture
	strength := s.state.Strength
	if len(board) > 0 {
		if texture == "" {
			texture = classify.Texture(board)
		}
		if strength == "" {
			strength = classify.Strength(s.state.Hole[0], s.state.Hole[1], board)
		}
	}
	return Request{
		TableID:   s.id,
		Seat:      s.state.Seat,
		Hole:      s.state.Hole,
		Street:    s.state.Street,
		Facing:    s.state.Facing,
		FacingBet: s.state.FacingBet,
		Limpers:   s.state.Limpers,
		Board:     deck.EncodeAll(board),
		Pot:       s.state.Pot,
		Texture:   texture,
		Strength:  strength,
		Villain:   s.state.Villain,
		Aggressor: s.state.Aggressor,
	}
}

// ApplyDecision installs an engine reply. It reports false when the
// reply is dropped: no request outstanding (stale after a reset) or a
// duplicate of the last applied reply.
func (s *Session) ApplyDecision(res *DecisionResult) bool {
	if res == nil {
		return false
	}
	if !s.awaiting {
		s.logger.Debug("dropping decision with no outstanding request", "action", res.Action)
		return false
	}
	if res.key() == s.lastKey {
		s.logger.Debug("dropping duplicate decision", "action", res.Action)
		return false
	}
	s.decision = res
	s.lastKey = res.key()
	s.awaiting = false
	s.bluffChosen = ""
	return true
}

// complete records the outcome, emits the hand-completion event, and
// resets the session.
func (s *Session) complete(outcome Outcome) {
	c := Completion{
		TableID:     s.id,
		Outcome:     outcome,
		OutcomeName: outcome.String(),
		State:       s.state,
	}
	if s.decision != nil {
		c.ActionTaken = s.decision.Action
		if s.bluffChosen != "" && s.decision.Bluff != nil {
			c.Bluff = &BluffRecord{
				Recommended:  s.decision.Bluff.Recommended,
				Chosen:       s.bluffChosen,
				FoldPct:      s.decision.Bluff.FoldPct,
				BreakEvenPct: s.decision.Bluff.BreakEvenPct,
				Realized:     outcome.String(),
			}
		}
	}
	s.logger.Info("hand complete", "outcome", outcome, "street", s.state.Street)
	emitter := s.emitter
	s.Reset()
	if emitter != nil {
		emitter.HandCompleted(c)
	}
}

// goBack exactly inverts the forward transition that led to the current
// step, clearing the datum that transition set.
func (s *Session) goBack() error {
	switch s.step {
	case StepPosition:
		// initial step, nothing to undo

	case StepCard1Rank:
		s.state.Seat = SeatUnset
		s.pendingRank = deck.NoRank
		s.step = StepPosition

	case StepCard1Suit, StepCard2Suit, StepBoardSuit:
		s.pendingRank = deck.NoRank
		s.step-- // back to the matching rank step

	case StepCard2Rank:
		s.pendingRank = s.state.Hole[0].Rank
		s.state.Hole[0] = deck.Card{}
		s.step = StepCard1Suit

	case StepAction:
		s.pendingRank = s.state.Hole[1].Rank
		s.state.Hole[1] = deck.Card{}
		s.step = StepCard2Suit

	case StepAmount:
		if s.branched {
			s.state.Facing = s.prevFacing
			s.state.FacingBet = s.prevBet
			s.state.Aggressor = s.prevAggro
			s.branched = false
			s.step = StepShowingDecision
		} else {
			s.state.Facing = FacingNone
			s.state.FacingBet = 0
			s.state.Aggressor = false
			s.step = StepAction
		}

	case StepLimperCount:
		s.state.Facing = FacingNone
		s.state.Limpers = 0
		s.step = StepAction

	case StepBoardRank:
		if s.boardIndex == s.streetStart() {
			s.popStreet()
		} else {
			s.uncommitBoardCard()
		}

	case StepPotSize:
		s.uncommitBoardCard()

	case StepBoardTexture:
		s.state.Pot = 0
		s.step = StepPotSize

	case StepHandStrength:
		s.state.Texture = ""
		s.step = StepBoardTexture

	case StepVillainType:
		if s.state.Street == Preflop {
			switch s.state.Facing {
			case FacingLimp:
				s.state.Limpers = 0
				s.step = StepLimperCount
			case FacingNone:
				s.step = StepAction
			default:
				s.state.FacingBet = 0
				s.step = StepAmount
			}
		} else {
			s.state.Strength = ""
			s.step = StepHandStrength
		}

	case StepShowingDecision:
		// a submitted request cannot be withdrawn

	case StepOutcomeSelect:
		s.step = StepShowingDecision
	}
	return nil
}

// streetStart is the board-entry index at which the current street's
// cards begin.
func (s *Session) streetStart() int {
	if s.state.Street == Preflop {
		return 0
	}
	return (s.state.Street - 1).BoardCards()
}

// uncommitBoardCard undoes the most recent board-card assignment,
// returning to its suit step with the rank pending again.
func (s *Session) uncommitBoardCard() {
	s.boardIndex--
	s.pendingRank = s.state.Board[s.boardIndex].Rank
	s.state.Board[s.boardIndex] = deck.Card{}
	s.step = StepBoardSuit
}

// popStreet crosses back over a street boundary, restoring the previous
// street's facing context and labels and returning to its decision.
func (s *Session) popStreet() {
	s.pendingRank = deck.NoRank
	if n := len(s.streets); n > 0 {
		frame := s.streets[n-1]
		s.streets = s.streets[:n-1]
		s.state.Facing = frame.Facing
		s.state.FacingBet = frame.FacingBet
		s.state.Aggressor = frame.Aggressor
		s.state.Texture = frame.Texture
		s.state.Strength = frame.Strength
	}
	if s.state.Street > Preflop {
		s.state.Street--
	}
	s.step = StepShowingDecision
}

// aggressorFor reports whether facing the given action implies we made
// the previous aggressive move (we raised and got reraised, or we bet
// and got check-raised).
func aggressorFor(f FacingAction) bool {
	switch f {
	case Facing3Bet, Facing4Bet, FacingCheckRaise:
		return true
	default:
		return false
	}
}

func parseAmount(in Input) (float64, error) {
	if in.Kind != InputNumber {
		return 0, ErrInvalidInput
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(in.Number), 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

func parseCount(in Input) (int, error) {
	if in.Kind != InputNumber {
		return 0, ErrInvalidInput
	}
	n, err := strconv.Atoi(strings.TrimSpace(in.Number))
	if err != nil || n <= 0 {
		return 0, ErrInvalidNumber
	}
	return n, nil
}
