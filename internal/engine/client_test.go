package engine

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokercoach/internal/protocol"
	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
)

func newTestClient(t *testing.T) (*Client, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewClient("ws://localhost:8090", 5*time.Second, log.Default(), clock), clock
}

func TestSendMessageNotConnected(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	msg, err := protocol.NewMessage(protocol.MessageTypeNewHand, protocol.NewHandData{TableID: 1})
	require.NoError(t, err)
	require.Error(t, c.SendMessage(msg))
}

func TestDecisionRequestedOfflineDoesNotArmWatchdog(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)

	// A request that never hits the wire gets no reply watchdog
	c.DecisionRequested(session.Request{TableID: 1})

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Empty(t, c.watchdogs)
}

func TestDecisionRequestCarriesStakesAndSnapshot(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	c.SetStakes(0.5, 100)

	tables := table.New(nil, log.Default())
	require.NoError(t, tables.Dispatch(session.Input{Kind: session.InputSeat, Seat: session.SeatBTN}))
	c.SetSnapshotProvider(tables.Snapshot)

	data := c.decisionRequest(session.Request{TableID: 1})
	assert.Equal(t, protocol.Stakes{BigBlind: 0.5, StackSize: 100}, data.Stakes)

	// Every request ships both tables so the host can resume after a
	// crash, not just at process exit.
	require.NotNil(t, data.Tables)
	require.Len(t, data.Tables.Tables, 1)
	assert.Equal(t, session.SeatBTN, data.Tables.Tables[0].State.Seat)
}

func TestDecisionRequestWithoutProviderOmitsTables(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	data := c.decisionRequest(session.Request{TableID: 1})
	assert.Nil(t, data.Tables)
}

func TestWatchdogLifecycle(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)

	c.armWatchdog(1)
	c.armWatchdog(2)
	c.mu.RLock()
	assert.Len(t, c.watchdogs, 2)
	c.mu.RUnlock()

	// Re-arming the same table replaces its timer
	c.armWatchdog(1)
	c.mu.RLock()
	assert.Len(t, c.watchdogs, 2)
	c.mu.RUnlock()

	c.cancelWatchdog(1)
	c.cancelWatchdog(2)
	c.cancelWatchdog(7) // unknown table is a no-op
	c.mu.RLock()
	assert.Empty(t, c.watchdogs)
	c.mu.RUnlock()
}

func TestTypedHandlerDispatch(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)

	var gotTable int
	var gotResult session.DecisionResult
	c.OnDecisionResult(func(tableID int, result session.DecisionResult) {
		gotTable = tableID
		gotResult = result
	})

	c.armWatchdog(1)
	msg, err := protocol.NewMessage(protocol.MessageTypeDecisionResult, protocol.DecisionResultData{
		TableID: 1,
		Result:  session.DecisionResult{Action: "call", Display: "CALL"},
	})
	require.NoError(t, err)
	c.dispatchMessage(msg)

	assert.Equal(t, 1, gotTable)
	assert.Equal(t, "call", gotResult.Action)

	// The answered request's watchdog is disarmed
	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Empty(t, c.watchdogs)
}

func TestMalformedPayloadIsIgnored(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)

	called := false
	c.OnNewHand(func(tableID int) { called = true })

	c.dispatchMessage(&protocol.Message{
		Type: protocol.MessageTypeNewHand,
		Data: []byte(`{"table_id": "not-a-number"}`),
	})
	assert.False(t, called)
}
