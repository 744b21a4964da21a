package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokercoach/internal/deck"
	"github.com/lox/pokercoach/internal/session"
)

type captureEmitter struct {
	requests    []session.Request
	completions []session.Completion
}

func (e *captureEmitter) DecisionRequested(req session.Request) {
	e.requests = append(e.requests, req)
}

func (e *captureEmitter) HandCompleted(c session.Completion) {
	e.completions = append(e.completions, c)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *captureEmitter) {
	t.Helper()
	emitter := &captureEmitter{}
	return New(emitter, nil), emitter
}

func seatTable(t *testing.T, c *Coordinator, seat session.Seat) {
	t.Helper()
	require.NoError(t, c.Dispatch(session.Input{Kind: session.InputSeat, Seat: seat}))
}

// driveToDecision enters a complete preflop hand on the active table
func driveToDecision(t *testing.T, c *Coordinator) {
	t.Helper()
	inputs := []session.Input{
		{Kind: session.InputSeat, Seat: session.SeatBTN},
		{Kind: session.InputRank, Rank: deck.Ace}, {Kind: session.InputSuit, Suit: deck.Spades},
		{Kind: session.InputRank, Rank: deck.King}, {Kind: session.InputSuit, Suit: deck.Diamonds},
		{Kind: session.InputAction, Action: session.FacingRaise},
		{Kind: session.InputNumber, Number: "3"},
		{Kind: session.InputVillain, Villain: session.VillainReg},
	}
	for _, in := range inputs {
		require.NoError(t, c.Dispatch(in))
	}
}

func TestSingleTableDefaults(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	assert.Equal(t, 1, c.ActiveID())
	assert.Equal(t, 1, c.PrimaryHolds())
	assert.False(t, c.SecondOpen())
	assert.Nil(t, c.Session(2))
}

func TestSwitchRequiresSecondTable(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	require.ErrorIs(t, c.SwitchTable(), ErrSecondTableClosed)
}

func TestSwitchExchangesBundles(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	seatTable(t, c, session.SeatUTG)

	c.OpenSecondTable()
	assert.Equal(t, 1, c.ActiveID())

	require.NoError(t, c.SwitchTable())
	assert.Equal(t, 2, c.ActiveID())
	assert.Equal(t, 2, c.PrimaryHolds())

	// Each table's entry is intact wherever its bundle lives
	assert.Equal(t, session.SeatUTG, c.Session(1).State().Seat)
	assert.False(t, c.Session(2).HasSeat())

	seatTable(t, c, session.SeatBB)
	assert.Equal(t, session.SeatBB, c.Session(2).State().Seat)

	// A second switch is a perfect inverse
	require.NoError(t, c.SwitchTable())
	assert.Equal(t, 1, c.ActiveID())
	assert.Equal(t, 1, c.PrimaryHolds())
	assert.Equal(t, session.SeatUTG, c.Session(1).State().Seat)
	assert.Equal(t, session.SeatBB, c.Session(2).State().Seat)
}

func TestOpenSecondTableIdempotent(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	c.OpenSecondTable()
	seatTable(t, c, session.SeatUTG)
	require.NoError(t, c.SwitchTable())
	seatTable(t, c, session.SeatCO)

	// Opening again must not replace the live second session
	c.OpenSecondTable()
	assert.Equal(t, session.SeatCO, c.Session(2).State().Seat)
}

func TestCloseUnseatedTableNeedsNoConfirmation(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	c.OpenSecondTable()

	require.NoError(t, c.CloseSecondTable(false))
	assert.False(t, c.SecondOpen())
	assert.Nil(t, c.Session(2))
	assert.Equal(t, 1, c.ActiveID())
}

func TestCloseSeatedTableRequiresConfirmation(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	c.OpenSecondTable()
	require.NoError(t, c.SwitchTable())
	seatTable(t, c, session.SeatHJ)

	err := c.CloseSecondTable(false)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.True(t, c.SecondOpen())
	assert.Equal(t, session.SeatHJ, c.Session(2).State().Seat)

	require.NoError(t, c.CloseSecondTable(true))
	assert.False(t, c.SecondOpen())
	assert.Nil(t, c.Session(2))
	assert.Equal(t, 1, c.ActiveID())
	assert.Equal(t, 1, c.PrimaryHolds())
}

func TestCloseActiveSecondTableSwitchesFirst(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	seatTable(t, c, session.SeatUTG)
	c.OpenSecondTable()
	require.NoError(t, c.SwitchTable())
	assert.Equal(t, 2, c.ActiveID())
	assert.Equal(t, 2, c.PrimaryHolds())

	require.NoError(t, c.CloseSecondTable(true))

	// The survivor ends up active, primary, and intact
	assert.Equal(t, 1, c.ActiveID())
	assert.Equal(t, 1, c.PrimaryHolds())
	assert.Equal(t, session.SeatUTG, c.Session(1).State().Seat)
	assert.Same(t, c.Primary(), c.Session(1))
}

func TestRouteDecisionFollowsIdentityAcrossSwaps(t *testing.T) {
	t.Parallel()

	c, emitter := newTestCoordinator(t)
	driveToDecision(t, c)
	require.Len(t, emitter.requests, 1)
	require.Equal(t, 1, emitter.requests[0].TableID)

	// The reply arrives after the user has swapped tables; it must land
	// on table 1's session regardless.
	c.OpenSecondTable()
	require.NoError(t, c.SwitchTable())

	applied := c.RouteDecision(1, &session.DecisionResult{Action: "call", Display: "CALL"})
	assert.True(t, applied)
	require.NotNil(t, c.Session(1).Decision())
	assert.Equal(t, "call", c.Session(1).Decision().Action)
	assert.Nil(t, c.Session(2).Decision())
}

func TestRouteDecisionDropsDuplicatesAndStrays(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	driveToDecision(t, c)

	res := session.DecisionResult{Action: "call", Display: "CALL"}
	assert.True(t, c.RouteDecision(1, &res))

	// Redelivered reply
	dup := res
	assert.False(t, c.RouteDecision(1, &dup))

	// Reply for a table that does not exist
	assert.False(t, c.RouteDecision(2, &session.DecisionResult{Action: "bet", Display: "BET"}))
	assert.False(t, c.RouteDecision(7, &session.DecisionResult{Action: "bet", Display: "BET"}))
}

func TestRouteDecisionDropsAfterReset(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	driveToDecision(t, c)
	c.Session(1).Reset()

	// The request the reply answers no longer exists
	assert.False(t, c.RouteDecision(1, &session.DecisionResult{Action: "call", Display: "CALL"}))
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	seatTable(t, c, session.SeatUTG)
	c.OpenSecondTable()
	require.NoError(t, c.SwitchTable())
	seatTable(t, c, session.SeatBB)

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Active)
	assert.Equal(t, 2, snap.PrimaryHolds)
	assert.True(t, snap.SecondOpen)
	require.Len(t, snap.Tables, 2)

	restored, _ := newTestCoordinator(t)
	restored.Restore(snap)

	assert.Equal(t, 2, restored.ActiveID())
	assert.Equal(t, 2, restored.PrimaryHolds())
	assert.True(t, restored.SecondOpen())
	assert.Equal(t, session.SeatUTG, restored.Session(1).State().Seat)
	assert.Equal(t, session.SeatBB, restored.Session(2).State().Seat)
}

func TestRestoreDamagedSnapshotFallsBack(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	c.Restore(Snapshot{Active: 7, PrimaryHolds: 3, SecondOpen: true})

	// No tables in the snapshot: a fresh single table
	assert.Equal(t, 1, c.ActiveID())
	assert.Equal(t, 1, c.PrimaryHolds())
	assert.False(t, c.SecondOpen())
	require.NotNil(t, c.Active())
	assert.False(t, c.Active().HasSeat())
}
