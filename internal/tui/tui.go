// Package tui renders the guided hand-entry flow as a Bubble Tea
// program. Every keystroke maps to a single session input; the TUI
// holds no hand state of its own.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokercoach/internal/classify"
	"github.com/lox/pokercoach/internal/deck"
	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
)

// DecisionResultMsg delivers an engine reply into the update loop so
// session state is only ever mutated on the program goroutine.
type DecisionResultMsg struct {
	TableID int
	Result  session.DecisionResult
}

// NewHandMsg resets a table for the next hand
type NewHandMsg struct {
	TableID int
}

// ContinueStreetMsg advances a table's entry onto the next street
type ContinueStreetMsg struct {
	TableID int
}

// RestoreMsg replaces the whole coordinator state from a snapshot
type RestoreMsg struct {
	Snapshot table.Snapshot
}

// EngineStatusMsg updates the connection indicator
type EngineStatusMsg struct {
	Connected bool
}

// Model is the Bubble Tea model for the entry client
type Model struct {
	tables  *table.Coordinator
	connect func() error
	logger  *log.Logger

	numberInput textinput.Model
	menuCursor  int
	lastStep    session.Step
	lastTable   int

	confirmClose bool
	statusMsg    string
	statusErr    bool
	engineUp     bool

	width    int
	height   int
	quitting bool
}

// menuItem is one selectable option on a menu step
type menuItem struct {
	label string
	input session.Input
}

// New creates the TUI model over an existing coordinator. A non-nil
// connect function is run as a program command once the loop is up, so
// the engine dial never blocks startup.
func New(tables *table.Coordinator, connect func() error, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 12
	ti.Width = 20
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Focus()

	return &Model{
		tables:      tables,
		connect:     connect,
		logger:      logger.WithPrefix("tui"),
		numberInput: ti,
		lastStep:    session.StepPosition,
		lastTable:   tables.ActiveID(),
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	if m.connect == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.connectCmd())
}

// connectCmd dials the engine off the update loop and reports the
// result as an ordinary status message.
func (m *Model) connectCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.connect(); err != nil {
			m.logger.Warn("engine unavailable, entry continues offline", "error", err)
			return EngineStatusMsg{Connected: false}
		}
		return EngineStatusMsg{Connected: true}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case DecisionResultMsg:
		res := msg.Result
		if m.tables.RouteDecision(msg.TableID, &res) {
			m.setStatus(fmt.Sprintf("decision received for table %d", msg.TableID), false)
		}

	case NewHandMsg:
		if sess := m.tables.Session(msg.TableID); sess != nil {
			sess.Reset()
			m.setStatus(fmt.Sprintf("table %d: new hand", msg.TableID), false)
		}

	case ContinueStreetMsg:
		if sess := m.tables.Session(msg.TableID); sess != nil {
			if err := sess.Apply(session.Input{Kind: session.InputNextStreet}); err != nil {
				m.logger.Warn("continue street rejected", "table", msg.TableID, "error", err)
			}
		}

	case RestoreMsg:
		m.tables.Restore(msg.Snapshot)
		m.setStatus("session restored", false)

	case EngineStatusMsg:
		m.engineUp = msg.Connected

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.syncComponents(msg)
}

// handleKey maps a keystroke to session inputs and table commands
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmClose {
		switch key {
		case "y", "Y":
			m.confirmClose = false
			if err := m.tables.CloseSecondTable(true); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus("second table closed", false)
			}
		case "n", "N", "esc":
			m.confirmClose = false
			m.setStatus("close cancelled", false)
		}
		return m, nil
	}

	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case "esc":
		m.dispatch(session.Input{Kind: session.InputBack})
		return m, nil

	case "ctrl+n":
		if sess := m.tables.Active(); sess != nil {
			sess.Reset()
			m.setStatus("hand discarded", false)
		}
		return m, nil

	case "ctrl+t":
		if err := m.tables.SwitchTable(); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.resetEntryUI()
		}
		return m, nil

	case "ctrl+o":
		m.tables.OpenSecondTable()
		return m, nil

	case "ctrl+w":
		err := m.tables.CloseSecondTable(false)
		if err == table.ErrConfirmationRequired {
			m.confirmClose = true
			return m, nil
		}
		if err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}

	sess := m.tables.Active()
	if sess == nil {
		return m, nil
	}

	switch step := sess.Step(); {
	case isMenuStep(step):
		m.handleMenuKey(key, sess)
	case isRankStep(step):
		if rank, ok := rankForKey(key); ok {
			m.dispatch(session.Input{Kind: session.InputRank, Rank: rank})
		}
	case isSuitStep(step):
		if suit, ok := suitForKey(key); ok {
			m.dispatch(session.Input{Kind: session.InputSuit, Suit: suit})
		}
	case isNumberStep(step):
		if key == "enter" {
			m.dispatch(session.Input{Kind: session.InputNumber, Number: strings.TrimSpace(m.numberInput.Value())})
			m.numberInput.SetValue("")
			return m, nil
		}
		var cmd tea.Cmd
		m.numberInput, cmd = m.numberInput.Update(msg)
		return m, cmd
	case step == session.StepShowingDecision:
		m.handleDecisionKey(key, sess)
	}

	return m, nil
}

// handleMenuKey moves the cursor or selects the highlighted item
func (m *Model) handleMenuKey(key string, sess *session.Session) {
	items := m.menuItems(sess)
	if len(items) == 0 {
		return
	}

	switch key {
	case "up", "k":
		m.menuCursor--
		if m.menuCursor < 0 {
			m.menuCursor = len(items) - 1
		}
	case "down", "j":
		m.menuCursor++
		if m.menuCursor >= len(items) {
			m.menuCursor = 0
		}
	case "enter", " ":
		m.dispatch(items[m.menuCursor].input)
	case "x":
		if sess.Step() == session.StepBoardTexture || sess.Step() == session.StepHandStrength {
			m.dispatch(session.Input{Kind: session.InputSkip})
		}
	}
}

// handleDecisionKey handles the post-decision branch keys
func (m *Model) handleDecisionKey(key string, sess *session.Session) {
	switch key {
	case "r":
		m.dispatch(session.Input{Kind: session.InputTheyRaised})
	case "b":
		m.dispatch(session.Input{Kind: session.InputTheyBet})
	case "n":
		m.dispatch(session.Input{Kind: session.InputNextStreet})
	case "o":
		m.dispatch(session.Input{Kind: session.InputRecordOutcome})
	case "1":
		if dec := sess.Decision(); dec != nil && dec.Bluff != nil {
			m.dispatch(session.Input{Kind: session.InputChooseBet})
		}
	case "2":
		if dec := sess.Decision(); dec != nil && dec.Bluff != nil {
			m.dispatch(session.Input{Kind: session.InputChooseCheck})
		}
	}
}

// dispatch sends one input to the active session, surfacing rejections
// in the status line.
func (m *Model) dispatch(in session.Input) {
	if err := m.tables.Dispatch(in); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.statusMsg = ""
	m.resetEntryUI()
}

// resetEntryUI clears per-step UI state after the step or table changes
func (m *Model) resetEntryUI() {
	m.menuCursor = 0
	m.numberInput.SetValue("")
	if sess := m.tables.Active(); sess != nil {
		m.lastStep = sess.Step()
	}
	m.lastTable = m.tables.ActiveID()
}

// syncComponents resets per-step UI state when the step or table changes
func (m *Model) syncComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	sess := m.tables.Active()
	if sess != nil {
		if sess.Step() != m.lastStep || m.tables.ActiveID() != m.lastTable {
			m.menuCursor = 0
			m.numberInput.SetValue("")
			m.lastStep = sess.Step()
			m.lastTable = m.tables.ActiveID()
		}
		if isNumberStep(sess.Step()) {
			m.numberInput, cmd = m.numberInput.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sess := m.tables.Active()
	if sess == nil {
		return ErrorStyle.Render("no active table")
	}

	sections := []string{
		m.renderHeader(),
		m.renderHandPanel(sess),
		m.renderStepPanel(sess),
		m.renderStatusLine(),
		m.renderHelpLine(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the table tabs and engine indicator
func (m *Model) renderHeader() string {
	var tabs []string
	for _, id := range []int{1, 2} {
		if id == 2 && !m.tables.SecondOpen() {
			continue
		}
		label := fmt.Sprintf("Table %d", id)
		if id == m.tables.ActiveID() {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}

	engine := ErrorStyle.Render("engine: offline")
	if m.engineUp {
		engine = SuccessStyle.Render("engine: connected")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		HeaderStyle.Render(" pokercoach "), " ",
		strings.Join(tabs, " "), "  ", engine)
}

// renderHandPanel summarizes the hand entered so far
func (m *Model) renderHandPanel(sess *session.Session) string {
	st := sess.State()
	var b strings.Builder

	b.WriteString(HandInfoStyle.Render(st.Street.String()))
	if st.Seat != session.SeatUnset {
		b.WriteString("  " + InfoStyle.Render("seat:") + " " + st.Seat.String())
	}
	if !st.Hole[0].IsZero() || !st.Hole[1].IsZero() {
		b.WriteString("  " + InfoStyle.Render("hand:") + " " + m.formatCards(st.Hole[:]))
	}
	if board := st.RevealedBoard(); len(board) > 0 {
		b.WriteString("  " + InfoStyle.Render("board:") + " " + m.formatCards(board))
	}
	if st.Pot > 0 {
		b.WriteString("  " + WarningStyle.Render(fmt.Sprintf("pot: %.1f", st.Pot)))
	}
	if st.Facing != session.FacingNone {
		facing := st.Facing.String()
		if st.FacingBet > 0 {
			facing = fmt.Sprintf("%s %.1f", facing, st.FacingBet)
		}
		b.WriteString("  " + InfoStyle.Render("facing:") + " " + facing)
	}
	if st.Aggressor {
		b.WriteString("  " + SuccessStyle.Render("(aggressor)"))
	}

	return b.String()
}

// renderStepPanel renders the prompt for the current step
func (m *Model) renderStepPanel(sess *session.Session) string {
	step := sess.Step()
	var b strings.Builder

	b.WriteString(PromptStyle.Render(stepPrompt(step, sess)))
	b.WriteString("\n")

	switch {
	case isMenuStep(step):
		items := m.menuItems(sess)
		for i, item := range items {
			cursor := "  "
			label := item.label
			if i == m.menuCursor {
				cursor = "> "
				label = SelectedStyle.Render(label)
			}
			b.WriteString(cursor + label + "\n")
		}
	case isRankStep(step):
		b.WriteString(InfoStyle.Render("2-9, t, j, q, k, a") + "\n")
	case isSuitStep(step):
		b.WriteString(InfoStyle.Render("s ♠  h ♥  d ♦  c ♣") + "\n")
	case isNumberStep(step):
		b.WriteString(m.numberInput.View() + "\n")
	case step == session.StepShowingDecision:
		b.WriteString(m.renderDecision(sess))
	}

	return b.String()
}

// renderDecision renders the engine's recommendation and the
// post-decision branch menu.
func (m *Model) renderDecision(sess *session.Session) string {
	var b strings.Builder

	dec := sess.Decision()
	if dec == nil {
		b.WriteString(InfoStyle.Render("waiting for recommendation...") + "\n")
	} else {
		b.WriteString(DecisionStyle.Render(dec.Display) + "\n")
		if dec.Explanation != "" {
			b.WriteString(dec.Explanation + "\n")
		}
		if dec.Calculation != "" {
			b.WriteString(InfoStyle.Render(dec.Calculation) + "\n")
		}
		if dec.Bluff != nil {
			b.WriteString("\n")
			b.WriteString(WarningStyle.Render(fmt.Sprintf(
				"bluff spot: bet EV %.2f vs check EV %.2f (needs %.0f%% folds, est %.0f%%)",
				dec.Bluff.EVBet, dec.Bluff.EVCheck, dec.Bluff.BreakEvenPct, dec.Bluff.FoldPct)) + "\n")
			b.WriteString("[1] bet  [2] check\n")
		}
	}

	st := sess.State()
	b.WriteString("\n[r] they raised")
	if st.Street != session.Preflop && st.Facing == session.FacingNone {
		b.WriteString("  [b] they bet")
	}
	if st.Street != session.River {
		b.WriteString("  [n] next street")
	}
	b.WriteString("  [o] record outcome\n")

	return b.String()
}

func (m *Model) renderStatusLine() string {
	if m.confirmClose {
		return WarningStyle.Render("close second table? hand in progress will be lost [y/n]")
	}
	if m.statusMsg == "" {
		return ""
	}
	if m.statusErr {
		return ErrorStyle.Render(m.statusMsg)
	}
	return InfoStyle.Render(m.statusMsg)
}

func (m *Model) renderHelpLine() string {
	return InfoStyle.Render("esc back • ctrl+n new hand • ctrl+t switch • ctrl+o open 2nd • ctrl+w close 2nd • ctrl+c quit")
}

// menuItems builds the options for the current menu step
func (m *Model) menuItems(sess *session.Session) []menuItem {
	switch sess.Step() {
	case session.StepPosition:
		var items []menuItem
		for _, seat := range []session.Seat{
			session.SeatUTG, session.SeatHJ, session.SeatCO,
			session.SeatBTN, session.SeatSB, session.SeatBB,
		} {
			items = append(items, menuItem{seat.String(), session.Input{Kind: session.InputSeat, Seat: seat}})
		}
		return items

	case session.StepAction:
		var items []menuItem
		for _, f := range []session.FacingAction{
			session.FacingNone, session.FacingLimp, session.FacingRaise,
			session.Facing3Bet, session.Facing4Bet,
		} {
			label := f.String()
			if f == session.FacingNone {
				label = "unopened"
			}
			items = append(items, menuItem{label, session.Input{Kind: session.InputAction, Action: f}})
		}
		return items

	case session.StepBoardTexture:
		var items []menuItem
		for _, t := range []classify.BoardTexture{
			classify.TextureDry, classify.TextureSemiWet,
			classify.TextureWet, classify.TexturePaired,
		} {
			items = append(items, menuItem{string(t), session.Input{Kind: session.InputTexture, Texture: t}})
		}
		items = append(items, menuItem{"skip (auto)", session.Input{Kind: session.InputSkip}})
		return items

	case session.StepHandStrength:
		var items []menuItem
		for _, s := range []classify.HandStrength{
			classify.StrengthMonster, classify.StrengthTwoPair, classify.StrengthOverpair,
			classify.StrengthTPTK, classify.StrengthTopPair, classify.StrengthMiddlePair,
			classify.StrengthBottomPair, classify.StrengthComboDraw, classify.StrengthFlushDraw,
			classify.StrengthOESD, classify.StrengthGutshot, classify.StrengthOvercards,
			classify.StrengthAir,
		} {
			items = append(items, menuItem{string(s), session.Input{Kind: session.InputStrength, Strength: s}})
		}
		items = append(items, menuItem{"skip (auto)", session.Input{Kind: session.InputSkip}})
		return items

	case session.StepVillainType:
		var items []menuItem
		for _, v := range []session.VillainType{
			session.VillainUnknown, session.VillainFish, session.VillainReg,
		} {
			items = append(items, menuItem{v.String(), session.Input{Kind: session.InputVillain, Villain: v}})
		}
		return items

	case session.StepOutcomeSelect:
		var items []menuItem
		for _, o := range []session.Outcome{
			session.OutcomeWon, session.OutcomeLost, session.OutcomeFolded,
		} {
			items = append(items, menuItem{o.String(), session.Input{Kind: session.InputOutcome, Outcome: o}})
		}
		return items
	}
	return nil
}

// formatCards formats cards with colors
func (m *Model) formatCards(cards []deck.Card) string {
	var formatted []string
	for _, card := range cards {
		if card.IsZero() {
			continue
		}
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// stepPrompt returns the question text for a step
func stepPrompt(step session.Step, sess *session.Session) string {
	switch step {
	case session.StepPosition:
		return "Where are you sitting?"
	case session.StepCard1Rank:
		return "First hole card rank?"
	case session.StepCard1Suit:
		return fmt.Sprintf("First hole card suit? (%s)", sess.PendingRank())
	case session.StepCard2Rank:
		return "Second hole card rank?"
	case session.StepCard2Suit:
		return fmt.Sprintf("Second hole card suit? (%s)", sess.PendingRank())
	case session.StepAction:
		return "What are you facing?"
	case session.StepAmount:
		return "Bet size?"
	case session.StepLimperCount:
		return "How many limpers?"
	case session.StepBoardRank:
		return fmt.Sprintf("Board card %d rank?", sess.BoardIndex()+1)
	case session.StepBoardSuit:
		return fmt.Sprintf("Board card %d suit? (%s)", sess.BoardIndex()+1, sess.PendingRank())
	case session.StepPotSize:
		return "Pot size?"
	case session.StepBoardTexture:
		return "Board texture?"
	case session.StepHandStrength:
		return "Hand strength?"
	case session.StepVillainType:
		return "Villain type?"
	case session.StepShowingDecision:
		return "Recommendation"
	case session.StepOutcomeSelect:
		return "How did the hand end?"
	default:
		return ""
	}
}

func isMenuStep(step session.Step) bool {
	switch step {
	case session.StepPosition, session.StepAction, session.StepBoardTexture,
		session.StepHandStrength, session.StepVillainType, session.StepOutcomeSelect:
		return true
	}
	return false
}

func isRankStep(step session.Step) bool {
	return step == session.StepCard1Rank || step == session.StepCard2Rank || step == session.StepBoardRank
}

func isSuitStep(step session.Step) bool {
	return step == session.StepCard1Suit || step == session.StepCard2Suit || step == session.StepBoardSuit
}

func isNumberStep(step session.Step) bool {
	return step == session.StepAmount || step == session.StepLimperCount || step == session.StepPotSize
}

// rankForKey maps a keystroke to a card rank
func rankForKey(key string) (deck.Rank, bool) {
	switch key {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return deck.Rank(key[0] - '0'), true
	case "t", "T", "0":
		return deck.Ten, true
	case "j", "J":
		return deck.Jack, true
	case "q", "Q":
		return deck.Queen, true
	case "k", "K":
		return deck.King, true
	case "a", "A":
		return deck.Ace, true
	}
	return deck.NoRank, false
}

// suitForKey maps a keystroke to a suit
func suitForKey(key string) (deck.Suit, bool) {
	switch key {
	case "s", "S":
		return deck.Spades, true
	case "h", "H":
		return deck.Hearts, true
	case "d", "D":
		return deck.Diamonds, true
	case "c", "C":
		return deck.Clubs, true
	}
	return deck.NoSuit, false
}
