// Package protocol defines the JSON wire protocol between the entry
// client and the recommendation engine.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
)

// Message represents a WebSocket message between client and engine
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// MessageType represents the type of a WebSocket message
type MessageType string

// Client to Engine message types
const (
	MessageTypeDecisionRequest MessageType = "decision_request"
	MessageTypeHandComplete    MessageType = "hand_complete"
	MessageTypeSnapshot        MessageType = "snapshot"
)

// Engine to Client message types
const (
	MessageTypeDecisionResult MessageType = "decision_result"
	MessageTypeNewHand        MessageType = "new_hand"
	MessageTypeContinueStreet MessageType = "continue_street"
	MessageTypeRestore        MessageType = "restore"
	MessageTypeError          MessageType = "error"
)

// Client to Engine message data structures

// Stakes is the stakes context attached to every decision request
type Stakes struct {
	BigBlind  float64 `json:"bb_size"`
	StackSize float64 `json:"stack_size"`
}

// DecisionRequestData is sent when guided entry completes and the
// client wants a recommendation. Every request also carries the stakes
// context and a snapshot of both tables, so the host can rebuild the
// whole client from its most recent request after a crash.
type DecisionRequestData struct {
	Request session.Request `json:"request"`
	Stakes  Stakes          `json:"stakes"`
	Tables  *table.Snapshot `json:"tables,omitempty"`
}

// HandCompleteData is sent when the user records a hand outcome
type HandCompleteData struct {
	Completion session.Completion `json:"completion"`
}

// SnapshotData carries the full client state for crash-safe resume
type SnapshotData struct {
	Tables table.Snapshot `json:"tables"`
}

// Engine to Client message data structures

// DecisionResultData is the engine's reply to a decision request. The
// table identity tags the reply back to whichever session issued the
// request, surviving table swaps in between.
type DecisionResultData struct {
	TableID int                    `json:"table_id"`
	Result  session.DecisionResult `json:"result"`
}

// NewHandData tells the client to reset a table for the next hand
type NewHandData struct {
	TableID int `json:"table_id"`
}

// ContinueStreetData tells the client entry continues on the next
// street of the same hand.
type ContinueStreetData struct {
	TableID int `json:"table_id"`
}

// RestoreData carries a previously captured snapshot back to the client
type RestoreData struct {
	Tables table.Snapshot `json:"tables"`
}

// ErrorData is sent when the engine rejects a request
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewMessage creates a new message with the given type and data
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      msgType,
		Data:      jsonData,
		Timestamp: time.Now().UTC(),
	}, nil
}
