// Package table coordinates the two guided-entry sessions: which one is
// active (receiving input), which is primary (exposed as the default
// view and used as the slot for the legacy single-table host), and the
// atomic swap/close protocols between them.
package table

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lox/pokercoach/internal/session"
)

var (
	// ErrConfirmationRequired is returned when closing a table that may
	// hold an in-progress hand or an unrecorded decision.
	ErrConfirmationRequired = errors.New("table has an in-progress hand, confirmation required")

	// ErrSecondTableClosed is returned for operations that need both
	// tables open.
	ErrSecondTableClosed = errors.New("second table is not open")
)

// Coordinator owns the two table sessions and the active/primary roles.
// The roles are independent: after a swap a table can be primary while
// inactive. Slot 0 is the primary storage location.
type Coordinator struct {
	logger  *log.Logger
	emitter session.Emitter

	slots      [2]*session.Session
	active     int // table identity currently receiving input
	secondOpen bool
}

// New creates a coordinator with a single fresh table
func New(emitter session.Emitter, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		logger:  logger.WithPrefix("table"),
		emitter: emitter,
		slots:   [2]*session.Session{session.New(1, emitter, logger)},
		active:  1,
	}
}

// ActiveID returns the identity of the table receiving input
func (c *Coordinator) ActiveID() int { return c.active }

// PrimaryHolds returns the identity of the table whose data is in the
// primary slot.
func (c *Coordinator) PrimaryHolds() int {
	if c.slots[0] == nil {
		return 1
	}
	return c.slots[0].ID()
}

// SecondOpen reports whether the second table is open
func (c *Coordinator) SecondOpen() bool { return c.secondOpen }

// Session returns the session currently holding the given table's data,
// looked up by identity rather than slot or role. Returns nil when no
// live session has that identity.
func (c *Coordinator) Session(id int) *session.Session {
	for _, s := range c.slots {
		if s != nil && s.ID() == id {
			return s
		}
	}
	return nil
}

// Active returns the session receiving input
func (c *Coordinator) Active() *session.Session {
	return c.Session(c.active)
}

// Primary returns the session in the primary slot
func (c *Coordinator) Primary() *session.Session {
	return c.slots[0]
}

// Dispatch forwards a guided-entry input to the active session
func (c *Coordinator) Dispatch(in session.Input) error {
	active := c.Active()
	if active == nil {
		return ErrSecondTableClosed
	}
	return active.Apply(in)
}

// SwitchTable exchanges the entire state bundles between the two
// storage locations and flips which table is active. The swap is a
// single pointer exchange, so it is all-or-nothing: in-progress entry
// can never leak between tables.
func (c *Coordinator) SwitchTable() error {
	if !c.secondOpen {
		return ErrSecondTableClosed
	}
	c.slots[0], c.slots[1] = c.slots[1], c.slots[0]
	c.active = otherTable(c.active)
	c.logger.Debug("switched tables", "active", c.active, "primary_holds", c.PrimaryHolds())
	return nil
}

// OpenSecondTable opens the second table with a fresh session. Opening
// twice is a no-op.
func (c *Coordinator) OpenSecondTable() {
	if c.secondOpen {
		return
	}
	fresh := session.New(2, c.emitter, c.logger)
	if c.slots[0] == nil {
		c.slots[0] = fresh
	} else {
		c.slots[1] = fresh
	}
	c.secondOpen = true
	c.logger.Info("opened second table")
}

// CloseSecondTable closes table 2. A table with no seat selected holds
// nothing worth keeping and closes immediately; otherwise explicit
// confirmation is required. If table 2 is active the coordinator
// switches first, so the surviving table always ends up as slot 1 with
// active=1 and primary=1.
func (c *Coordinator) CloseSecondTable(confirmed bool) error {
	if !c.secondOpen {
		return nil
	}
	sess := c.Session(2)
	if sess == nil {
		c.secondOpen = false
		return nil
	}
	if sess.HasSeat() && !confirmed {
		return ErrConfirmationRequired
	}
	if c.active == 2 {
		if err := c.SwitchTable(); err != nil {
			return err
		}
	}
	sess.Reset()
	for i, s := range c.slots {
		if s != nil && s.ID() == 2 {
			c.slots[i] = nil
		}
	}
	if c.slots[0] == nil {
		c.slots[0], c.slots[1] = c.slots[1], nil
	}
	c.active = 1
	c.secondOpen = false
	c.logger.Info("closed second table")
	return nil
}

// RouteDecision applies an engine reply to whichever session currently
// holds the tagged table's data, regardless of which table is active or
// primary at delivery time. Replies for dead identities and duplicates
// of the last applied reply are dropped silently; redelivery after a
// swap is a benign race, not a fault.
func (c *Coordinator) RouteDecision(tableID int, res *session.DecisionResult) bool {
	sess := c.Session(tableID)
	if sess == nil {
		c.logger.Debug("dropping decision for unknown table", "table", tableID)
		return false
	}
	return sess.ApplyDecision(res)
}

// Snapshot captures both tables and the coordinator roles for the
// host's crash-safe resume.
func (c *Coordinator) Snapshot() Snapshot {
	snap := Snapshot{
		Active:       c.active,
		PrimaryHolds: c.PrimaryHolds(),
		SecondOpen:   c.secondOpen,
	}
	for _, s := range c.slots {
		if s != nil {
			snap.Tables = append(snap.Tables, s.Snapshot())
		}
	}
	return snap
}

// Restore rebuilds the coordinator from a prior snapshot, placing each
// table's bundle back in the slot it occupied. Malformed fields fall
// back to defaults; the flow always remains resumable.
func (c *Coordinator) Restore(snap Snapshot) {
	c.slots = [2]*session.Session{}
	for _, ts := range snap.Tables {
		s := session.FromSnapshot(ts, c.emitter, c.logger)
		if c.Session(s.ID()) != nil {
			continue // duplicate identity, keep the first
		}
		if c.slots[0] == nil {
			c.slots[0] = s
		} else if c.slots[1] == nil {
			c.slots[1] = s
		}
	}
	if c.slots[0] == nil {
		c.slots[0] = session.New(1, c.emitter, c.logger)
	}

	// Primary role: make sure the recorded table's bundle sits in slot 0
	if c.slots[1] != nil && c.slots[1].ID() == snap.PrimaryHolds {
		c.slots[0], c.slots[1] = c.slots[1], c.slots[0]
	}

	c.secondOpen = snap.SecondOpen && c.slots[1] != nil
	c.active = snap.Active
	if c.Session(c.active) == nil {
		c.active = c.slots[0].ID()
	}
	c.logger.Info("restored tables", "active", c.active, "primary_holds", c.PrimaryHolds(), "second_open", c.secondOpen)
}

// Snapshot is the serializable form of the coordinator and both tables
type Snapshot struct {
	Active       int                `json:"active_table"`
	PrimaryHolds int                `json:"primary_holds_table"`
	SecondOpen   bool               `json:"show_second_table"`
	Tables       []session.Snapshot `json:"tables"`
}

func otherTable(id int) int {
	if id == 1 {
		return 2
	}
	return 1
}
