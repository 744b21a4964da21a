package session

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokercoach/internal/deck"
)

// Snapshot captures everything needed to rebuild this session exactly:
// hand state, step, entry buffers, and decision bookkeeping.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		State:       s.state,
		Step:        s.step,
		BoardIndex:  s.boardIndex,
		PendingRank: s.pendingRank,
		Decision:    s.decision,
		LastKey:     s.lastKey,
		Awaiting:    s.awaiting,
		Branched:    s.branched,
		PrevFacing:  s.prevFacing,
		PrevBet:     s.prevBet,
		PrevAggro:   s.prevAggro,
		BluffChosen: s.bluffChosen,
	}
	snap.Streets = append(snap.Streets, s.streets...)
	return snap
}

// FromSnapshot reconstructs a live session from a prior snapshot.
// Out-of-range fields are clamped to safe defaults so a damaged
// snapshot degrades to a resumable session instead of failing.
func FromSnapshot(snap Snapshot, emitter Emitter, logger *log.Logger) *Session {
	id := snap.ID
	if id != 1 && id != 2 {
		id = 1
	}
	s := New(id, emitter, logger)
	s.state = snap.State
	s.step = clampStep(snap.Step)
	s.boardIndex = clampBoardIndex(snap.BoardIndex, snap.State.Street)
	if snap.PendingRank >= deck.Two && snap.PendingRank <= deck.Ace {
		s.pendingRank = snap.PendingRank
	}
	s.decision = snap.Decision
	s.lastKey = snap.LastKey
	s.awaiting = snap.Awaiting
	s.branched = snap.Branched
	s.prevFacing = snap.PrevFacing
	s.prevBet = snap.PrevBet
	s.prevAggro = snap.PrevAggro
	s.bluffChosen = snap.BluffChosen
	s.streets = append(s.streets, snap.Streets...)

	// The board invariant: slots beyond the street's requirement are
	// always empty.
	for i := snap.State.Street.BoardCards(); i < len(s.state.Board); i++ {
		s.state.Board[i] = deck.Card{}
	}
	return s
}

func clampStep(step Step) Step {
	if step < StepPosition || step > StepOutcomeSelect || step == StepReady {
		return StepPosition
	}
	return step
}

func clampBoardIndex(idx int, street Street) int {
	if idx < 0 {
		return 0
	}
	if max := street.BoardCards(); idx > max {
		return max
	}
	return idx
}
