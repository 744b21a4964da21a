// Package engine provides the WebSocket client for the recommendation
// engine. It is the production Emitter for table sessions: completed
// entry becomes a decision_request on the wire, and decision_result
// replies are routed back by table identity.
package engine

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/pokercoach/internal/protocol"
	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
)

// EventHandler is a function that handles incoming messages
type EventHandler func(*protocol.Message)

// Client provides a WebSocket client for connecting to the engine
type Client struct {
	serverURL     string
	replyTimeout  time.Duration
	conn          *websocket.Conn
	logger        *log.Logger
	clock         quartz.Clock
	mu            sync.RWMutex
	eventHandlers map[protocol.MessageType][]EventHandler
	watchdogs     map[int]*quartz.Timer
	stakes        protocol.Stakes
	snapshot      func() table.Snapshot
	connected     bool
	stopChan      chan struct{}
}

// NewClient creates a new engine client. The clock is injectable so
// tests can drive the reply watchdog.
func NewClient(serverURL string, replyTimeout time.Duration, logger *log.Logger, clock quartz.Clock) *Client {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Client{
		serverURL:     serverURL,
		replyTimeout:  replyTimeout,
		logger:        logger.WithPrefix("engine"),
		clock:         clock,
		eventHandlers: make(map[protocol.MessageType][]EventHandler),
		watchdogs:     make(map[int]*quartz.Timer),
		stopChan:      make(chan struct{}),
	}
}

// Connect establishes a WebSocket connection to the engine
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid engine URL: %w", err)
	}

	// Ensure WebSocket scheme
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already correct
	default:
		u.Scheme = "ws"
	}

	c.logger.Info("connecting to engine", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()

	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false
	close(c.stopChan)

	for id, t := range c.watchdogs {
		t.Stop()
		delete(c.watchdogs, id)
	}

	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.conn.Close()
	}

	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the engine
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// AddEventHandler registers a handler for a specific message type
func (c *Client) AddEventHandler(msgType protocol.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[msgType] = append(c.eventHandlers[msgType], handler)
}

// SetStakes records the stakes context attached to every decision
// request.
func (c *Client) SetStakes(bigBlind, stackSize float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stakes = protocol.Stakes{BigBlind: bigBlind, StackSize: stackSize}
}

// SetSnapshotProvider registers the callback that captures both tables
// when a decision request is sent, so the host holds a snapshot no
// older than the last request.
func (c *Client) SetSnapshotProvider(fn func() table.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = fn
}

// decisionRequest builds the wire payload for one request, attaching
// the stakes context and the current dual-table snapshot.
func (c *Client) decisionRequest(req session.Request) protocol.DecisionRequestData {
	c.mu.RLock()
	stakes := c.stakes
	snapshotFn := c.snapshot
	c.mu.RUnlock()

	data := protocol.DecisionRequestData{Request: req, Stakes: stakes}
	if snapshotFn != nil {
		snap := snapshotFn()
		data.Tables = &snap
	}
	return data
}

// DecisionRequested implements session.Emitter. A send failure is
// logged and dropped; guided entry keeps working offline and the user
// simply gets no recommendation.
func (c *Client) DecisionRequested(req session.Request) {
	data := c.decisionRequest(req)
	msg, err := protocol.NewMessage(protocol.MessageTypeDecisionRequest, data)
	if err != nil {
		c.logger.Error("failed to create decision request", "error", err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		c.logger.Warn("failed to send decision request", "table", req.TableID, "error", err)
		return
	}
	c.armWatchdog(req.TableID)
}

// HandCompleted implements session.Emitter
func (c *Client) HandCompleted(comp session.Completion) {
	c.cancelWatchdog(comp.TableID)
	data := protocol.HandCompleteData{Completion: comp}
	msg, err := protocol.NewMessage(protocol.MessageTypeHandComplete, data)
	if err != nil {
		c.logger.Error("failed to create hand complete message", "error", err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		c.logger.Warn("failed to send hand completion", "table", comp.TableID, "error", err)
	}
}

// SendSnapshot ships the current client state to the engine for
// crash-safe resume.
func (c *Client) SendSnapshot(snap table.Snapshot) error {
	msg, err := protocol.NewMessage(protocol.MessageTypeSnapshot, protocol.SnapshotData{Tables: snap})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// OnDecisionResult registers a typed handler for engine replies
func (c *Client) OnDecisionResult(fn func(tableID int, result session.DecisionResult)) {
	c.AddEventHandler(protocol.MessageTypeDecisionResult, func(msg *protocol.Message) {
		var data protocol.DecisionResultData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("malformed decision result", "error", err)
			return
		}
		c.cancelWatchdog(data.TableID)
		fn(data.TableID, data.Result)
	})
}

// OnNewHand registers a typed handler for new_hand notifications
func (c *Client) OnNewHand(fn func(tableID int)) {
	c.AddEventHandler(protocol.MessageTypeNewHand, func(msg *protocol.Message) {
		var data protocol.NewHandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("malformed new hand message", "error", err)
			return
		}
		fn(data.TableID)
	})
}

// OnContinueStreet registers a typed handler for continue_street
// notifications.
func (c *Client) OnContinueStreet(fn func(tableID int)) {
	c.AddEventHandler(protocol.MessageTypeContinueStreet, func(msg *protocol.Message) {
		var data protocol.ContinueStreetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("malformed continue street message", "error", err)
			return
		}
		fn(data.TableID)
	})
}

// OnRestore registers a typed handler for restore payloads
func (c *Client) OnRestore(fn func(snap table.Snapshot)) {
	c.AddEventHandler(protocol.MessageTypeRestore, func(msg *protocol.Message) {
		var data protocol.RestoreData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("malformed restore message", "error", err)
			return
		}
		fn(data.Tables)
	})
}

// armWatchdog warns when the engine does not answer a request in time.
// The session stays resumable either way, so the watchdog only logs.
func (c *Client) armWatchdog(tableID int) {
	if c.replyTimeout <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.watchdogs[tableID]; ok {
		t.Stop()
	}
	c.watchdogs[tableID] = c.clock.AfterFunc(c.replyTimeout, func() {
		c.logger.Warn("no decision result from engine", "table", tableID, "timeout", c.replyTimeout)
	})
}

func (c *Client) cancelWatchdog(tableID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.watchdogs[tableID]; ok {
		t.Stop()
		delete(c.watchdogs, tableID)
	}
}

// readMessages continuously reads messages from the WebSocket connection
func (c *Client) readMessages() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
			var msg protocol.Message
			err := c.conn.ReadJSON(&msg)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("websocket error", "error", err)
				}
				return
			}

			c.dispatchMessage(&msg)
		}
	}
}

// dispatchMessage sends a message to all registered handlers
func (c *Client) dispatchMessage(msg *protocol.Message) {
	c.mu.RLock()
	handlers := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	for _, handler := range handlers {
		handler(msg)
	}
}
