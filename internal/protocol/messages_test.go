package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeNewHand, NewHandData{TableID: 2})
	require.NoError(t, err)

	assert.Equal(t, MessageTypeNewHand, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var data NewHandData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 2, data.TableID)
}

func TestDecisionResultEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeDecisionResult, DecisionResultData{
		TableID: 1,
		Result: session.DecisionResult{
			Action:  "bet",
			Amount:  5,
			Display: "BET 5",
			Bluff: &session.BluffContext{
				EVBet:       1.2,
				Recommended: "bet",
			},
		},
	})
	require.NoError(t, err)

	// The full envelope survives a trip over the wire
	wire, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(wire, &decoded))
	assert.Equal(t, MessageTypeDecisionResult, decoded.Type)

	var data DecisionResultData
	require.NoError(t, json.Unmarshal(decoded.Data, &data))
	assert.Equal(t, 1, data.TableID)
	assert.Equal(t, "bet", data.Result.Action)
	require.NotNil(t, data.Result.Bluff)
	assert.Equal(t, "bet", data.Result.Bluff.Recommended)
}

func TestDecisionRequestWireFormat(t *testing.T) {
	t.Parallel()

	snap := table.Snapshot{Active: 1, PrimaryHolds: 1}
	data := DecisionRequestData{
		Request: session.Request{TableID: 1, Seat: session.SeatBTN},
		Stakes:  Stakes{BigBlind: 0.5, StackSize: 100},
		Tables:  &snap,
	}

	wire, err := json.Marshal(data)
	require.NoError(t, err)

	assert.Contains(t, string(wire), `"bb_size":0.5`)
	assert.Contains(t, string(wire), `"stack_size":100`)
	assert.Contains(t, string(wire), `"active_table":1`)

	var decoded DecisionRequestData
	require.NoError(t, json.Unmarshal(wire, &decoded))
	assert.Equal(t, data.Stakes, decoded.Stakes)
	require.NotNil(t, decoded.Tables)
	assert.Equal(t, 1, decoded.Tables.Active)
}

func TestUnknownEnumStringsDecodeToDefaults(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"request": {
			"table_id": 1,
			"seat": "LOBBY",
			"street": "fifth",
			"facing": "shove",
			"hole": ["As", "??"]
		}
	}`)

	var data DecisionRequestData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, session.SeatUnset, data.Request.Seat)
	assert.Equal(t, session.Preflop, data.Request.Street)
	assert.Equal(t, session.FacingNone, data.Request.Facing)
	assert.False(t, data.Request.Hole[0].IsZero())
	assert.True(t, data.Request.Hole[1].IsZero())
}
